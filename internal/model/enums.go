package model

import "strings"

// Job kinds
type JobKind string

const (
	JobKindImage          JobKind = "image"
	JobKindDocument       JobKind = "document"
	JobKindFields         JobKind = "fields"
	JobKindTextField      JobKind = "textField"
	JobKindBarcodeField   JobKind = "barcodeField"
	JobKindCheckmarkField JobKind = "checkmarkField"
	JobKindMRZ            JobKind = "mrz"
	JobKindBusinessCard   JobKind = "businessCard"
)

var ValidJobKinds = []JobKind{
	JobKindImage, JobKindDocument, JobKindFields, JobKindTextField,
	JobKindBarcodeField, JobKindCheckmarkField, JobKindMRZ, JobKindBusinessCard,
}

// ParseJobKind matches s against ValidJobKinds ignoring case.
func ParseJobKind(s string) (JobKind, bool) {
	for _, k := range ValidJobKinds {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return "", false
}

// IsFieldLevel reports whether the kind recognizes a single region of each image.
func (k JobKind) IsFieldLevel() bool {
	switch k {
	case JobKindTextField, JobKindBarcodeField, JobKindCheckmarkField:
		return true
	}
	return false
}

// Remote task status
type TaskStatus string

const (
	TaskStatusSubmitted        TaskStatus = "Submitted"
	TaskStatusQueued           TaskStatus = "Queued"
	TaskStatusInProgress       TaskStatus = "InProgress"
	TaskStatusCompleted        TaskStatus = "Completed"
	TaskStatusFailed           TaskStatus = "ProcessingFailed"
	TaskStatusDeleted          TaskStatus = "Deleted"
	TaskStatusNotEnoughCredits TaskStatus = "NotEnoughCredits"
)

// IsPending reports whether the remote service is still working on the task.
func (s TaskStatus) IsPending() bool {
	return s == TaskStatusQueued || s == TaskStatusInProgress
}

// IsTerminal reports whether the status can no longer change.
// Submitted is neither pending nor terminal: the task waits for more pages.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusDeleted, TaskStatusNotEnoughCredits:
		return true
	}
	return false
}

func (s TaskStatus) Succeeded() bool {
	return s == TaskStatusCompleted
}

// Export formats
type ExportFormat string

const (
	FormatTxt                  ExportFormat = "txt"
	FormatTxtUnstructured      ExportFormat = "txtUnstructured"
	FormatRtf                  ExportFormat = "rtf"
	FormatDocx                 ExportFormat = "docx"
	FormatXlsx                 ExportFormat = "xlsx"
	FormatPptx                 ExportFormat = "pptx"
	FormatOdt                  ExportFormat = "odt"
	FormatPdfSearchable        ExportFormat = "pdfSa"
	FormatPdfTextAndImages     ExportFormat = "pdfTextAndImages"
	FormatPdfA                 ExportFormat = "pdfa"
	FormatXML                  ExportFormat = "xml"
	FormatXMLForCorrectedImage ExportFormat = "xmlForCorrectedImage"
	FormatAlto                 ExportFormat = "alto"
	FormatCsv                  ExportFormat = "csv"
	FormatVCard                ExportFormat = "vCard"
)

var ValidExportFormats = []ExportFormat{
	FormatTxt, FormatTxtUnstructured, FormatRtf, FormatDocx, FormatXlsx,
	FormatPptx, FormatOdt, FormatPdfSearchable, FormatPdfTextAndImages,
	FormatPdfA, FormatXML, FormatXMLForCorrectedImage, FormatAlto,
	FormatCsv, FormatVCard,
}

var formatExtensions = map[ExportFormat]string{
	FormatTxt:                  "txt",
	FormatTxtUnstructured:      "txt",
	FormatRtf:                  "rtf",
	FormatDocx:                 "docx",
	FormatXlsx:                 "xlsx",
	FormatPptx:                 "pptx",
	FormatOdt:                  "odt",
	FormatPdfSearchable:        "pdf",
	FormatPdfTextAndImages:     "pdf",
	FormatPdfA:                 "pdf",
	FormatXML:                  "xml",
	FormatXMLForCorrectedImage: "xml",
	FormatAlto:                 "xml",
	FormatCsv:                  "csv",
	FormatVCard:                "vcf",
}

var formatAliases = map[string]ExportFormat{
	"pdfsearchable": FormatPdfSearchable,
	"vcard":         FormatVCard,
}

// ParseExportFormat matches s against the known formats and their aliases ignoring case.
func ParseExportFormat(s string) (ExportFormat, bool) {
	s = strings.TrimSpace(s)
	for _, f := range ValidExportFormats {
		if strings.EqualFold(string(f), s) {
			return f, true
		}
	}
	f, ok := formatAliases[strings.ToLower(s)]
	return f, ok
}

// Extension returns the file extension written for the format, without the dot.
func (f ExportFormat) Extension() string {
	return formatExtensions[f]
}

// Processing profiles
type Profile string

const (
	ProfileDefault            Profile = ""
	ProfileDocumentConversion Profile = "documentConversion"
	ProfileDocumentArchiving  Profile = "documentArchiving"
	ProfileTextExtraction     Profile = "textExtraction"
)

var ValidProfiles = []Profile{
	ProfileDocumentConversion, ProfileDocumentArchiving, ProfileTextExtraction,
}

func ParseProfile(s string) (Profile, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ProfileDefault, true
	}
	for _, p := range ValidProfiles {
		if strings.EqualFold(string(p), s) {
			return p, true
		}
	}
	return "", false
}

// Pipeline stages reported to subscribers
type Stage string

const (
	StageUploaded   Stage = "uploaded"
	StageProcessed  Stage = "processed"
	StageDownloaded Stage = "downloaded"
	StageListed     Stage = "listed"
)
