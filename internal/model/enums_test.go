package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatus_Classification(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		pending  bool
		terminal bool
	}{
		{TaskStatusSubmitted, false, false},
		{TaskStatusQueued, true, false},
		{TaskStatusInProgress, true, false},
		{TaskStatusCompleted, false, true},
		{TaskStatusFailed, false, true},
		{TaskStatusNotEnoughCredits, false, true},
		{TaskStatusDeleted, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.pending, tt.status.IsPending())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestExportFormat_EveryFormatHasExtension(t *testing.T) {
	for _, f := range ValidExportFormats {
		assert.NotEmpty(t, f.Extension(), f)
	}
	assert.Equal(t, "pdf", FormatPdfSearchable.Extension())
	assert.Equal(t, "vcf", FormatVCard.Extension())
	assert.Equal(t, "xml", FormatAlto.Extension())
}

func TestParseExportFormat(t *testing.T) {
	f, ok := ParseExportFormat(" PDFSEARCHABLE ")
	assert.True(t, ok)
	assert.Equal(t, FormatPdfSearchable, f)

	f, ok = ParseExportFormat("xmlforcorrectedimage")
	assert.True(t, ok)
	assert.Equal(t, FormatXMLForCorrectedImage, f)

	_, ok = ParseExportFormat("png")
	assert.False(t, ok)
}

func TestParseJobKindAndProfile(t *testing.T) {
	k, ok := ParseJobKind("BUSINESSCARD")
	assert.True(t, ok)
	assert.Equal(t, JobKindBusinessCard, k)
	assert.False(t, JobKindMRZ.IsFieldLevel())
	assert.True(t, JobKindCheckmarkField.IsFieldLevel())

	p, ok := ParseProfile("")
	assert.True(t, ok)
	assert.Equal(t, ProfileDefault, p)

	_, ok = ParseProfile("turbo")
	assert.False(t, ok)
}

func TestParseFieldRegion(t *testing.T) {
	r, err := ParseFieldRegion(" 10, 20,110 ,60")
	require.NoError(t, err)
	assert.Equal(t, FieldRegion{Left: 10, Top: 20, Right: 110, Bottom: 60}, *r)
	assert.Equal(t, "10,20,110,60", r.Format())

	_, err = ParseFieldRegion("1,2,3")
	assert.Error(t, err)

	_, err = ParseFieldRegion("a,b,c,d")
	assert.Error(t, err)
}
