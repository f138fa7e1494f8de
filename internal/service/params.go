package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

const defaultLanguage = "english"

var documentFormats = []model.ExportFormat{
	model.FormatTxt, model.FormatTxtUnstructured, model.FormatRtf, model.FormatDocx,
	model.FormatXlsx, model.FormatPptx, model.FormatOdt, model.FormatPdfSearchable,
	model.FormatPdfTextAndImages, model.FormatPdfA, model.FormatXML,
	model.FormatXMLForCorrectedImage, model.FormatAlto,
}

var businessCardFormats = []model.ExportFormat{model.FormatXML, model.FormatVCard, model.FormatCsv}

var fieldFormats = []model.ExportFormat{model.FormatXML}

// AllowedFormats returns the export formats a job kind can produce.
func AllowedFormats(kind model.JobKind) []model.ExportFormat {
	switch kind {
	case model.JobKindImage, model.JobKindDocument:
		return documentFormats
	case model.JobKindBusinessCard:
		return businessCardFormats
	default:
		return fieldFormats
	}
}

// DefaultFormat is used when a request names no export format.
func DefaultFormat(kind model.JobKind) model.ExportFormat {
	switch kind {
	case model.JobKindImage, model.JobKindDocument:
		return model.FormatTxt
	default:
		return model.FormatXML
	}
}

// NewJobRequest validates opts and builds an immutable request. Source
// directories are expanded here, once.
func NewJobRequest(validate *validator.Validate, opts model.JobOptions) (*model.JobRequest, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, &ValidationError{Msg: "invalid job options", Err: err}
	}

	kind, ok := model.ParseJobKind(opts.Kind)
	if !ok {
		return nil, invalidf("unknown job kind %q", opts.Kind)
	}

	formats, err := ParseFormats(kind, opts.ExportFormats)
	if err != nil {
		return nil, err
	}

	profile, ok := model.ParseProfile(opts.Profile)
	if !ok {
		return nil, invalidf("invalid profile %q", opts.Profile)
	}

	if kind == model.JobKindFields {
		if opts.XMLSettings == "" {
			return nil, invalidf("xml settings file is required for %s", kind)
		}
		info, err := os.Stat(opts.XMLSettings)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, invalidf("xml settings %s does not exist", opts.XMLSettings)
			}
			return nil, &ResourceError{Path: opts.XMLSettings, Err: err}
		}
		if info.IsDir() {
			return nil, invalidf("xml settings %s is a directory", opts.XMLSettings)
		}
	}

	sources, err := ExpandSources(opts.Sources)
	if err != nil {
		return nil, err
	}

	return &model.JobRequest{
		Kind:          kind,
		Sources:       sources,
		BaseName:      baseName(opts.Sources[0]),
		TargetDir:     opts.TargetDir,
		Languages:     parseLanguages(opts.Language),
		ExportFormats: formats,
		Profile:       profile,
		XMLSettings:   opts.XMLSettings,
		Region:        opts.Region,
	}, nil
}

// ParseFormats accepts comma separated values inside each entry, drops
// duplicates and rejects formats that would write the same file.
func ParseFormats(kind model.JobKind, raw []string) ([]model.ExportFormat, error) {
	var formats []model.ExportFormat
	byExt := make(map[string]model.ExportFormat)
	allowed := AllowedFormats(kind)

	for _, entry := range raw {
		for _, s := range strings.Split(entry, ",") {
			if strings.TrimSpace(s) == "" {
				continue
			}
			f, ok := model.ParseExportFormat(s)
			if !ok {
				return nil, invalidf("invalid output format %q", strings.TrimSpace(s))
			}
			if !slices.Contains(allowed, f) {
				return nil, invalidf("output format %s is not supported for %s", f, kind)
			}
			if slices.Contains(formats, f) {
				continue
			}
			if other, ok := byExt[f.Extension()]; ok {
				return nil, invalidf("output formats %s and %s both write .%s files", other, f, f.Extension())
			}
			byExt[f.Extension()] = f
			formats = append(formats, f)
		}
	}

	if len(formats) == 0 {
		formats = []model.ExportFormat{DefaultFormat(kind)}
	}

	if kind == model.JobKindBusinessCard && len(formats) != 1 {
		return nil, &ValidationError{Msg: fmt.Sprintf("%s accepts exactly one output format, got %d", kind, len(formats))}
	}

	return formats, nil
}

func parseLanguages(s string) []string {
	var langs []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return []string{defaultLanguage}
	}
	return langs
}
