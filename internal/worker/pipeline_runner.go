package worker

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ocrsdk/cloud-runner/internal/model"
	"github.com/ocrsdk/cloud-runner/internal/service"
)

// Broadcaster pushes task updates to connected browsers.
type Broadcaster interface {
	BroadcastStage(taskID string, stage model.Stage, status model.UserTaskStatus, remoteTaskID string)
	BroadcastComplete(taskID string, result *model.UserTask)
	BroadcastError(taskID string, code, message string)
}

// JobProcessor is the part of service.Processor the runner drives.
type JobProcessor interface {
	RunJob(ctx context.Context, opts model.JobOptions, token any) ([]model.ResultArtifact, error)
}

// PipelineRunner starts one goroutine per uploaded file and keeps the
// task records in step with the pipeline's stage events.
type PipelineRunner struct {
	processor JobProcessor
	store     service.TaskStore
	hub       Broadcaster
	mirror    *ArtifactMirror

	ctx context.Context
	wg  sync.WaitGroup
}

// NewPipelineRunner creates a runner. Pipelines stop when ctx is cancelled.
// mirror may be nil.
func NewPipelineRunner(ctx context.Context, processor JobProcessor, store service.TaskStore, hub Broadcaster, mirror *ArtifactMirror) *PipelineRunner {
	return &PipelineRunner{
		processor: processor,
		store:     store,
		hub:       hub,
		mirror:    mirror,
		ctx:       ctx,
	}
}

// Start saves task and runs opts in the background. tempDir, when set, is
// removed once the pipeline returns.
func (r *PipelineRunner) Start(task *model.UserTask, opts model.JobOptions, tempDir string) error {
	task.Status = model.UserTaskUploading
	if err := r.store.Save(r.ctx, task); err != nil {
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.cleanup(tempDir)

		log.Printf("[Runner] task %s: %s %s", task.ID, task.Kind, task.SourceName)
		if _, err := r.processor.RunJob(r.ctx, opts, task.ID); err != nil {
			log.Printf("[Runner] task %s failed: %v", task.ID, err)
			return
		}
		log.Printf("[Runner] task %s completed", task.ID)
	}()

	return nil
}

// Wait blocks until every started pipeline has returned.
func (r *PipelineRunner) Wait() {
	r.wg.Wait()
}

// OnJobEvent updates the record identified by the event token.
func (r *PipelineRunner) OnJobEvent(event model.JobEvent) {
	taskID, ok := event.Token.(string)
	if !ok || taskID == "" {
		return
	}

	ctx := context.WithoutCancel(r.ctx)
	task, err := r.store.Get(ctx, taskID)
	if err != nil {
		log.Printf("[Runner] task %s: %v", taskID, err)
		return
	}

	if event.Task != nil {
		task.RemoteTaskID = event.Task.TaskID
		task.RemoteStatus = event.Task.Status
	}

	if event.Err != nil {
		r.failTask(ctx, task, event.Err)
		return
	}

	switch event.Stage {
	case model.StageUploaded:
		task.Status = model.UserTaskProcessing
	case model.StageProcessed:
		task.Status = model.UserTaskProcessing
	case model.StageDownloaded:
		r.completeTask(ctx, task, event.Artifacts)
		return
	default:
		return
	}

	if err := r.store.Save(ctx, task); err != nil {
		log.Printf("[Runner] task %s: %v", taskID, err)
	}
	r.hub.BroadcastStage(task.ID, event.Stage, task.Status, task.RemoteTaskID)
}

func (r *PipelineRunner) completeTask(ctx context.Context, task *model.UserTask, artifacts []model.ResultArtifact) {
	now := time.Now()
	task.Status = model.UserTaskReady
	task.CompletedAt = &now
	task.Outputs = make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		task.Outputs[string(a.Format)] = a.Path
	}

	if r.mirror != nil {
		urls, err := r.mirror.Mirror(ctx, task.ID, artifacts)
		if err != nil {
			log.Printf("[Runner] task %s: mirror failed: %v", task.ID, err)
		}
		task.MirrorURLs = urls
	}

	if err := r.store.Save(ctx, task); err != nil {
		log.Printf("[Runner] task %s: %v", task.ID, err)
	}
	r.hub.BroadcastStage(task.ID, model.StageDownloaded, task.Status, task.RemoteTaskID)
	r.hub.BroadcastComplete(task.ID, task)
}

func (r *PipelineRunner) failTask(ctx context.Context, task *model.UserTask, cause error) {
	now := time.Now()
	msg := cause.Error()
	task.Status = model.UserTaskFailed
	task.Error = &msg
	task.CompletedAt = &now

	if err := r.store.Save(ctx, task); err != nil {
		log.Printf("[Runner] task %s: %v", task.ID, err)
	}
	r.hub.BroadcastError(task.ID, errorCode(cause), msg)
}

// errorCode maps a pipeline error to the code sent to browsers.
func errorCode(err error) string {
	var (
		verr *service.ValidationError
		ferr *service.JobFailedError
		rerr *service.ResourceError
	)
	switch {
	case errors.Is(err, service.ErrNotEnoughCredits):
		return "NOT_ENOUGH_CREDITS"
	case errors.As(err, &ferr):
		return "JOB_FAILED"
	case errors.As(err, &verr):
		return "VALIDATION_ERROR"
	case errors.As(err, &rerr):
		return "STORAGE_ERROR"
	default:
		return "SERVICE_ERROR"
	}
}

func (r *PipelineRunner) cleanup(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(filepath.Clean(dir)); err != nil {
		log.Printf("[Runner] failed to remove %s: %v", dir, err)
	}
}
