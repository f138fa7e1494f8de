package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JobOptions carries the raw values a front-end collected for one job.
type JobOptions struct {
	Kind          string       `json:"kind" validate:"required"`
	Sources       []string     `json:"sources" validate:"required,min=1,dive,required"`
	TargetDir     string       `json:"targetDir" validate:"required"`
	Language      string       `json:"language,omitempty"`
	ExportFormats []string     `json:"exportFormats,omitempty" validate:"dive,required"`
	Profile       string       `json:"profile,omitempty"`
	XMLSettings   string       `json:"xmlSettings,omitempty"`
	Region        *FieldRegion `json:"region,omitempty"`
}

// JobRequest is a validated, normalized job description.
// It is not modified after construction.
type JobRequest struct {
	Kind          JobKind
	Sources       []string
	BaseName      string // result file name for single-task pipelines
	TargetDir     string
	Languages     []string
	ExportFormats []ExportFormat
	Profile       Profile
	XMLSettings   string
	Region        *FieldRegion
}

// FieldRegion is a rectangle in image pixel coordinates.
type FieldRegion struct {
	Left   int `json:"left" validate:"gte=0"`
	Top    int `json:"top" validate:"gte=0"`
	Right  int `json:"right" validate:"gtfield=Left"`
	Bottom int `json:"bottom" validate:"gtfield=Top"`
}

// Format renders the region the way the recognition API expects it.
func (r FieldRegion) Format() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Right, r.Bottom)
}

// ParseFieldRegion reads a region written as "left,top,right,bottom".
func ParseFieldRegion(s string) (*FieldRegion, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("region %q: want left,top,right,bottom", s)
	}

	var coords [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", s, err)
		}
		coords[i] = n
	}

	return &FieldRegion{Left: coords[0], Top: coords[1], Right: coords[2], Bottom: coords[3]}, nil
}

// TaskInfo is the remote service's view of a job.
type TaskInfo struct {
	TaskID             string     `json:"taskId"`
	RegistrationTime   time.Time  `json:"registrationTime"`
	StatusChangeTime   time.Time  `json:"statusChangeTime"`
	Status             TaskStatus `json:"status"`
	Error              string     `json:"error,omitempty"`
	FilesCount         int        `json:"filesCount"`
	Credits            int        `json:"credits"`
	RequestStatusDelay int        `json:"requestStatusDelay"` // milliseconds
	ResultURLs         []string   `json:"resultUrls,omitempty"`
	Description        string     `json:"description,omitempty"`
}

// PollDelay is how long the service asks clients to wait before the next status check.
func (t *TaskInfo) PollDelay() time.Duration {
	return time.Duration(t.RequestStatusDelay) * time.Millisecond
}

// ResultArtifact is one downloaded result file.
type ResultArtifact struct {
	Format    ExportFormat `json:"format"`
	SourceURL string       `json:"sourceUrl"`
	Path      string       `json:"path"`
}
