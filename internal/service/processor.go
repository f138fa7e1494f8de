package service

import (
	"context"
	"log"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/ocrsdk/cloud-runner/internal/client"
	"github.com/ocrsdk/cloud-runner/internal/model"
)

// Processor runs recognition pipelines against the remote service and
// reports every stage through its Notifier. It keeps no per-job state, so
// one Processor can run many pipelines concurrently.
type Processor struct {
	service      client.RecognitionService
	poller       *Poller
	materializer *Materializer
	notifier     *Notifier
	validate     *validator.Validate
}

// NewProcessor wires a processor. A nil sleep waits on real timers.
func NewProcessor(svc client.RecognitionService, downloader client.ResultDownloader, notifier *Notifier, validate *validator.Validate, sleep SleepFunc) *Processor {
	if notifier == nil {
		notifier = NewNotifier()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &Processor{
		service:      svc,
		poller:       NewPoller(svc, sleep),
		materializer: NewMaterializer(downloader),
		notifier:     notifier,
		validate:     validate,
	}
}

// Notifier returns the notifier stage events are published on.
func (p *Processor) Notifier() *Notifier {
	return p.notifier
}

// RunJob validates opts and runs the matching pipeline. Validation
// failures are published on an Uploaded event without a task.
func (p *Processor) RunJob(ctx context.Context, opts model.JobOptions, token any) ([]model.ResultArtifact, error) {
	req, err := NewJobRequest(p.validate, opts)
	if err != nil {
		p.publish(model.StageUploaded, nil, nil, err, token)
		return nil, err
	}
	return p.RunPipeline(ctx, req, token)
}

// RunPipeline executes the pipeline for req.Kind. The target directory is
// created before the first network call. Every error returned has also
// been published on the event of the stage it happened in.
func (p *Processor) RunPipeline(ctx context.Context, req *model.JobRequest, token any) ([]model.ResultArtifact, error) {
	run, ok := pipelines[req.Kind]
	if !ok {
		err := invalidf("unknown job kind %q", req.Kind)
		p.publish(model.StageUploaded, nil, nil, err, token)
		return nil, err
	}

	if len(req.Sources) == 0 || len(req.ExportFormats) == 0 {
		err := invalidf("job needs at least one source file and one export format")
		p.publish(model.StageUploaded, nil, nil, err, token)
		return nil, err
	}

	if err := os.MkdirAll(req.TargetDir, 0755); err != nil {
		rerr := &ResourceError{Path: req.TargetDir, Err: err}
		p.publish(model.StageUploaded, nil, nil, rerr, token)
		return nil, rerr
	}

	log.Printf("[Processor] %s: %d file(s) → %s", req.Kind, len(req.Sources), req.TargetDir)
	return run(p, ctx, req, token)
}

// ListTasks returns the tasks known to the remote service and publishes
// them on a Listed event.
func (p *Processor) ListTasks(ctx context.Context, token any) ([]model.TaskInfo, error) {
	tasks, err := p.service.ListTasks(ctx)
	if err != nil {
		terr := &TransportError{Op: "list tasks", Err: err}
		p.notifier.Publish(model.JobEvent{Stage: model.StageListed, Err: terr, Token: token})
		return nil, terr
	}

	p.notifier.Publish(model.JobEvent{Stage: model.StageListed, Tasks: slices.Clone(tasks), Token: token})
	return tasks, nil
}

// awaitAndDownload polls task to a terminal status and writes its results.
func (p *Processor) awaitAndDownload(ctx context.Context, req *model.JobRequest, task *model.TaskInfo, base string, token any) ([]model.ResultArtifact, error) {
	task, err := p.poller.Wait(ctx, task)
	if err != nil {
		p.publish(model.StageProcessed, task, nil, err, token)
		return nil, err
	}

	if !task.Status.Succeeded() {
		ferr := &JobFailedError{TaskID: task.TaskID, Status: task.Status, Detail: task.Error}
		log.Printf("[Processor] %v", ferr)
		p.publish(model.StageProcessed, task, nil, ferr, token)
		return nil, ferr
	}
	p.publish(model.StageProcessed, task, nil, nil, token)

	artifacts, err := p.materializer.Materialize(ctx, task, req.ExportFormats, req.TargetDir, base)
	p.publish(model.StageDownloaded, task, artifacts, err, token)
	return artifacts, err
}

func (p *Processor) publish(stage model.Stage, task *model.TaskInfo, artifacts []model.ResultArtifact, err error, token any) {
	event := model.JobEvent{
		Stage:     stage,
		Artifacts: slices.Clone(artifacts),
		Err:       err,
		Token:     token,
	}
	if task != nil {
		snapshot := *task
		snapshot.ResultURLs = slices.Clone(task.ResultURLs)
		event.Task = &snapshot
	}
	p.notifier.Publish(event)
}
