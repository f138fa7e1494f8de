package service

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		kind    model.JobKind
		raw     []string
		want    []model.ExportFormat
		wantErr string
	}{
		{
			name: "default for image",
			kind: model.JobKindImage,
			want: []model.ExportFormat{model.FormatTxt},
		},
		{
			name: "default for field kinds",
			kind: model.JobKindMRZ,
			want: []model.ExportFormat{model.FormatXML},
		},
		{
			name: "case insensitive with comma list and alias",
			kind: model.JobKindDocument,
			raw:  []string{"TXT, pdfSearchable", "Docx"},
			want: []model.ExportFormat{model.FormatTxt, model.FormatPdfSearchable, model.FormatDocx},
		},
		{
			name: "duplicates dropped",
			kind: model.JobKindImage,
			raw:  []string{"txt", "txt"},
			want: []model.ExportFormat{model.FormatTxt},
		},
		{
			name:    "unknown format",
			kind:    model.JobKindImage,
			raw:     []string{"mp3"},
			wantErr: "invalid output format",
		},
		{
			name:    "same extension twice",
			kind:    model.JobKindImage,
			raw:     []string{"pdfSa", "pdfa"},
			wantErr: "both write .pdf files",
		},
		{
			name:    "not allowed for kind",
			kind:    model.JobKindTextField,
			raw:     []string{"docx"},
			wantErr: "not supported",
		},
		{
			name: "business card vcard",
			kind: model.JobKindBusinessCard,
			raw:  []string{"vcard"},
			want: []model.ExportFormat{model.FormatVCard},
		},
		{
			name:    "business card accepts one format",
			kind:    model.JobKindBusinessCard,
			raw:     []string{"vCard", "csv"},
			wantErr: "exactly one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormats(tt.kind, tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var verr *ValidationError
				assert.True(t, errors.As(err, &verr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewJobRequest(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "invoice.scan.tif"), "x")

	req, err := NewJobRequest(validator.New(), model.JobOptions{
		Kind:      "TextField",
		Sources:   []string{src},
		TargetDir: filepath.Join(dir, "out"),
		Language:  " english , french ,",
		Profile:   "TEXTEXTRACTION",
		Region:    &model.FieldRegion{Left: 1, Top: 2, Right: 3, Bottom: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, model.JobKindTextField, req.Kind)
	assert.Equal(t, "invoice.scan", req.BaseName)
	assert.Equal(t, []string{"english", "french"}, req.Languages)
	assert.Equal(t, model.ProfileTextExtraction, req.Profile)
	assert.Equal(t, []model.ExportFormat{model.FormatXML}, req.ExportFormats)
	assert.Equal(t, "1,2,3,4", req.Region.Format())
}

func TestNewJobRequest_Invalid(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.tif"), "x")

	tests := []struct {
		name string
		opts model.JobOptions
	}{
		{name: "missing kind", opts: model.JobOptions{Sources: []string{src}, TargetDir: dir}},
		{name: "unknown kind", opts: model.JobOptions{Kind: "audio", Sources: []string{src}, TargetDir: dir}},
		{name: "no sources", opts: model.JobOptions{Kind: "image", TargetDir: dir}},
		{name: "missing source", opts: model.JobOptions{Kind: "image", Sources: []string{filepath.Join(dir, "nope.tif")}, TargetDir: dir}},
		{name: "empty directory", opts: model.JobOptions{Kind: "document", Sources: []string{t.TempDir()}, TargetDir: dir}},
		{name: "bad profile", opts: model.JobOptions{Kind: "image", Sources: []string{src}, TargetDir: dir, Profile: "fast"}},
		{name: "inverted region", opts: model.JobOptions{Kind: "textField", Sources: []string{src}, TargetDir: dir,
			Region: &model.FieldRegion{Left: 50, Top: 0, Right: 10, Bottom: 10}}},
		{name: "fields without settings", opts: model.JobOptions{Kind: "fields", Sources: []string{src}, TargetDir: dir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJobRequest(validator.New(), tt.opts)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}

func TestExpandSources_SortedAcrossInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "2.png"), "x")
	writeFile(t, filepath.Join(dir, "b", "1.png"), "x")
	writeFile(t, filepath.Join(dir, "b", "nested", "skip.png"), "x")
	single := writeFile(t, filepath.Join(dir, "a.png"), "x")

	files, err := ExpandSources([]string{filepath.Join(dir, "b"), single})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b", "1.png"),
		filepath.Join(dir, "b", "2.png"),
	}, files)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "a", baseName("/x/a.tif"))
	assert.Equal(t, "scans", baseName("/x/scans/"))
	assert.Equal(t, "document", baseName(".tif"))
}
