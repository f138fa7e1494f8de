package service

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/ocrsdk/cloud-runner/internal/client"
	"github.com/ocrsdk/cloud-runner/internal/model"
)

// Materializer writes the result files of a finished task to disk.
type Materializer struct {
	downloader client.ResultDownloader
}

func NewMaterializer(downloader client.ResultDownloader) *Materializer {
	return &Materializer{downloader: downloader}
}

// Materialize downloads one file per export format into targetDir, named
// <baseName>.<extension>. Result URLs are matched to formats by position.
// It stops at the first failure; files written before it are kept.
func (m *Materializer) Materialize(ctx context.Context, task *model.TaskInfo, formats []model.ExportFormat, targetDir, baseName string) ([]model.ResultArtifact, error) {
	if len(task.ResultURLs) != len(formats) {
		return nil, &ValidationError{
			Msg: "task " + task.TaskID,
			Err: ErrCountMismatch,
		}
	}

	artifacts := make([]model.ResultArtifact, 0, len(formats))
	for i, format := range formats {
		artifact := model.ResultArtifact{
			Format:    format,
			SourceURL: task.ResultURLs[i],
			Path:      filepath.Join(targetDir, baseName+"."+format.Extension()),
		}

		if err := m.download(ctx, artifact); err != nil {
			return artifacts, err
		}

		log.Printf("[Materializer] task=%s wrote %s", task.TaskID, artifact.Path)
		artifacts = append(artifacts, artifact)
	}

	return artifacts, nil
}

func (m *Materializer) download(ctx context.Context, artifact model.ResultArtifact) error {
	body, err := m.downloader.DownloadResult(ctx, artifact.SourceURL)
	if err != nil {
		return &TransportError{Op: "download " + string(artifact.Format) + " result", Err: err}
	}
	defer body.Close()

	file, err := os.Create(artifact.Path)
	if err != nil {
		return &ResourceError{Path: artifact.Path, Err: err}
	}

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return &ResourceError{Path: artifact.Path, Err: err}
		}
		return &TransportError{Op: "download " + string(artifact.Format) + " result", Err: err}
	}

	if err := file.Close(); err != nil {
		return &ResourceError{Path: artifact.Path, Err: err}
	}
	return nil
}
