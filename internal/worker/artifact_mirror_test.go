package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

func TestArtifactMirror_UploadsEachArtifact(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "scan.txt")
	xml := filepath.Join(dir, "scan.xml")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(xml, []byte("<doc/>"), 0644))

	storage := &fakeStorage{}
	mirror := NewArtifactMirror(storage)

	urls, err := mirror.Mirror(context.Background(), "t1", []model.ResultArtifact{
		{Format: model.FormatTxt, Path: txt},
		{Format: model.FormatXML, Path: xml},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"results/t1/scan.txt", "results/t1/scan.xml"}, storage.keys)
	assert.Equal(t, "https://cdn.example/results/t1/scan.xml", urls["xml"])
	assert.Equal(t, "<doc/>", storage.data["results/t1/scan.xml"])
}

func TestArtifactMirror_StopsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "scan.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0644))

	storage := &fakeStorage{}
	mirror := NewArtifactMirror(storage)

	urls, err := mirror.Mirror(context.Background(), "t1", []model.ResultArtifact{
		{Format: model.FormatTxt, Path: txt},
		{Format: model.FormatXML, Path: filepath.Join(dir, "missing.xml")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Len(t, urls, 1)
	assert.Len(t, storage.keys, 1)
}
