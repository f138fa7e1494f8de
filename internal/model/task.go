package model

import "time"

// UserTaskStatus is the web front-end's view of one pipeline run.
type UserTaskStatus string

const (
	UserTaskUploading  UserTaskStatus = "uploading"
	UserTaskProcessing UserTaskStatus = "processing"
	UserTaskReady      UserTaskStatus = "ready"
	UserTaskFailed     UserTaskStatus = "failed"
)

// UserTask is one uploaded file going through a pipeline.
type UserTask struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId,omitempty"`
	SourceName    string            `json:"sourceName"`
	Kind          JobKind           `json:"kind"`
	ExportFormats []ExportFormat    `json:"exportFormats"`
	RemoteTaskID  string            `json:"remoteTaskId,omitempty"`
	Status        UserTaskStatus    `json:"status"`
	RemoteStatus  TaskStatus        `json:"remoteStatus,omitempty"`
	Error         *string           `json:"error,omitempty"`
	Outputs       map[string]string `json:"outputs,omitempty"` // format -> local path
	MirrorURLs    map[string]string `json:"mirrorUrls,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
}

// JobStartForm is the non-file part of POST /api/jobs.
type JobStartForm struct {
	Kind          string   `form:"kind" validate:"required,oneof=image textField barcodeField checkmarkField mrz businessCard"`
	Language      string   `form:"language"`
	Profile       string   `form:"profile" validate:"omitempty,oneof=documentConversion documentArchiving textExtraction"`
	ExportFormats []string `form:"exportFormat"`
	Region        string   `form:"region"`
}

// JobStartResponse lists the records created for the uploaded files.
type JobStartResponse struct {
	Tasks []*UserTask `json:"tasks"`
}

// RemoteTaskListResponse is returned by GET /api/remote-tasks.
type RemoteTaskListResponse struct {
	Tasks []TaskInfo `json:"tasks"`
}
