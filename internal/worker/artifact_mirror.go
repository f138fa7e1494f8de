package worker

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/ocrsdk/cloud-runner/internal/client"
	"github.com/ocrsdk/cloud-runner/internal/model"
)

// ArtifactMirror copies downloaded result files to object storage.
type ArtifactMirror struct {
	storage client.ArtifactStorage
}

func NewArtifactMirror(storage client.ArtifactStorage) *ArtifactMirror {
	return &ArtifactMirror{storage: storage}
}

// Mirror uploads each artifact under results/<taskID>/ and returns the
// public URL per format. It stops at the first failed upload.
func (m *ArtifactMirror) Mirror(ctx context.Context, taskID string, artifacts []model.ResultArtifact) (map[string]string, error) {
	urls := make(map[string]string, len(artifacts))

	for _, a := range artifacts {
		url, err := m.upload(ctx, taskID, a)
		if err != nil {
			return urls, err
		}
		urls[string(a.Format)] = url
	}

	return urls, nil
}

func (m *ArtifactMirror) upload(ctx context.Context, taskID string, a model.ResultArtifact) (string, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(a.Path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("results/%s/%s", taskID, filepath.Base(a.Path))
	return m.storage.Upload(ctx, key, f, contentType)
}
