package client

import (
	"net/url"
	"strings"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

// ImageParams configures a single-image recognition
type ImageParams struct {
	Languages     []string
	Profile       model.Profile
	ExportFormats []model.ExportFormat
	Description   string
}

// SubmitParams adds a page to a new or existing task
type SubmitParams struct {
	TaskID      string
	Description string
}

// DocumentParams starts recognition of all submitted pages
type DocumentParams struct {
	TaskID        string
	Languages     []string
	Profile       model.Profile
	ExportFormats []model.ExportFormat
	Description   string
}

// FieldsParams starts field recognition with an XML settings template
type FieldsParams struct {
	TaskID      string
	Description string
}

// TextFieldParams configures recognition of a text region
type TextFieldParams struct {
	Region      string
	Languages   []string
	Description string
}

// BarcodeFieldParams configures recognition of a barcode region
type BarcodeFieldParams struct {
	Region      string
	BarcodeType string
	Description string
}

// CheckmarkFieldParams configures recognition of a checkmark region
type CheckmarkFieldParams struct {
	Region        string
	CheckmarkType string
	Description   string
}

// BusinessCardParams configures business card recognition
type BusinessCardParams struct {
	Languages    []string
	ExportFormat model.ExportFormat
	Description  string
}

// MRZParams configures machine-readable zone recognition
type MRZParams struct {
	Description string
}

func (p ImageParams) values() url.Values {
	v := url.Values{}
	setList(v, "language", p.Languages)
	setString(v, "profile", string(p.Profile))
	setList(v, "exportFormat", formatStrings(p.ExportFormats))
	setString(v, "description", p.Description)
	return v
}

func (p SubmitParams) values() url.Values {
	v := url.Values{}
	setString(v, "taskId", p.TaskID)
	setString(v, "description", p.Description)
	return v
}

func (p DocumentParams) values() url.Values {
	v := url.Values{}
	setString(v, "taskId", p.TaskID)
	setList(v, "language", p.Languages)
	setString(v, "profile", string(p.Profile))
	setList(v, "exportFormat", formatStrings(p.ExportFormats))
	setString(v, "description", p.Description)
	return v
}

func (p FieldsParams) values() url.Values {
	v := url.Values{}
	setString(v, "taskId", p.TaskID)
	setString(v, "description", p.Description)
	return v
}

func (p TextFieldParams) values() url.Values {
	v := url.Values{}
	setString(v, "region", p.Region)
	setList(v, "language", p.Languages)
	setString(v, "description", p.Description)
	return v
}

func (p BarcodeFieldParams) values() url.Values {
	v := url.Values{}
	setString(v, "region", p.Region)
	setString(v, "barcodeType", p.BarcodeType)
	setString(v, "description", p.Description)
	return v
}

func (p CheckmarkFieldParams) values() url.Values {
	v := url.Values{}
	setString(v, "region", p.Region)
	setString(v, "checkmarkType", p.CheckmarkType)
	setString(v, "description", p.Description)
	return v
}

func (p BusinessCardParams) values() url.Values {
	v := url.Values{}
	setList(v, "language", p.Languages)
	setString(v, "exportFormat", string(p.ExportFormat))
	setString(v, "description", p.Description)
	return v
}

func (p MRZParams) values() url.Values {
	v := url.Values{}
	setString(v, "description", p.Description)
	return v
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// setList joins values with commas, the list encoding the API expects.
func setList(v url.Values, key string, values []string) {
	if len(values) > 0 {
		v.Set(key, strings.Join(values, ","))
	}
}

func formatStrings(formats []model.ExportFormat) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
