package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ocrsdk/cloud-runner/internal/client"
	"github.com/ocrsdk/cloud-runner/internal/model"
)

// fieldsSettingsName is the upload name of the processFields template.
const fieldsSettingsName = "fieldResult"

type pipeline func(p *Processor, ctx context.Context, req *model.JobRequest, token any) ([]model.ResultArtifact, error)

// pipelines maps every job kind to the pipeline that runs it.
var pipelines = map[model.JobKind]pipeline{
	model.JobKindImage:          (*Processor).runSingle,
	model.JobKindDocument:       (*Processor).runDocument,
	model.JobKindFields:         (*Processor).runTemplatedFields,
	model.JobKindTextField:      (*Processor).runPerFile,
	model.JobKindBarcodeField:   (*Processor).runPerFile,
	model.JobKindCheckmarkField: (*Processor).runPerFile,
	model.JobKindMRZ:            (*Processor).runPerFile,
	model.JobKindBusinessCard:   (*Processor).runPerFile,
}

// runSingle uploads one image and starts its recognition in one call.
func (p *Processor) runSingle(ctx context.Context, req *model.JobRequest, token any) ([]model.ResultArtifact, error) {
	params := client.ImageParams{
		Languages:     req.Languages,
		Profile:       req.Profile,
		ExportFormats: req.ExportFormats,
	}

	task, err := p.uploadFile(req.Sources[0], func(r io.Reader) (*model.TaskInfo, error) {
		return p.service.ProcessImage(ctx, params, r, req.BaseName)
	})
	p.publish(model.StageUploaded, task, nil, err, token)
	if err != nil {
		return nil, err
	}

	return p.awaitAndDownload(ctx, req, task, req.BaseName, token)
}

// runDocument treats a single page as an image and several pages as one batch.
func (p *Processor) runDocument(ctx context.Context, req *model.JobRequest, token any) ([]model.ResultArtifact, error) {
	if len(req.Sources) == 1 {
		return p.runSingle(ctx, req, token)
	}
	return p.runBatch(ctx, req, token)
}

// runBatch submits every page to one task, then starts document processing.
func (p *Processor) runBatch(ctx context.Context, req *model.JobRequest, token any) ([]model.ResultArtifact, error) {
	task, err := p.submitPages(ctx, req.Sources)
	p.publish(model.StageUploaded, task, nil, err, token)
	if err != nil {
		return nil, err
	}

	submitted := task
	task, err = p.service.ProcessDocument(ctx, client.DocumentParams{
		TaskID:        submitted.TaskID,
		Languages:     req.Languages,
		Profile:       req.Profile,
		ExportFormats: req.ExportFormats,
	})
	if err != nil {
		terr := &TransportError{Op: "start document processing", Err: err}
		p.publish(model.StageProcessed, submitted, nil, terr, token)
		return nil, terr
	}

	return p.awaitAndDownload(ctx, req, task, req.BaseName, token)
}

// runTemplatedFields submits every page, then the XML settings that describe
// the fields to recognize on them.
func (p *Processor) runTemplatedFields(ctx context.Context, req *model.JobRequest, token any) ([]model.ResultArtifact, error) {
	task, err := p.submitPages(ctx, req.Sources)
	p.publish(model.StageUploaded, task, nil, err, token)
	if err != nil {
		return nil, err
	}

	submitted := task
	task, err = p.uploadFile(req.XMLSettings, func(r io.Reader) (*model.TaskInfo, error) {
		return p.service.ProcessFields(ctx, client.FieldsParams{TaskID: submitted.TaskID}, r, fieldsSettingsName)
	})
	if err != nil {
		p.publish(model.StageProcessed, submitted, nil, err, token)
		return nil, err
	}

	return p.awaitAndDownload(ctx, req, task, req.BaseName, token)
}

// runPerFile runs an independent task per source file. A failed file does
// not stop the others; the errors of all files are joined.
func (p *Processor) runPerFile(ctx context.Context, req *model.JobRequest, token any) ([]model.ResultArtifact, error) {
	var (
		artifacts []model.ResultArtifact
		errs      []error
	)

	for _, file := range req.Sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		base := baseName(file)
		task, err := p.uploadFile(file, func(r io.Reader) (*model.TaskInfo, error) {
			return p.startFileTask(ctx, req, r, base)
		})
		p.publish(model.StageUploaded, task, nil, err, token)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		produced, err := p.awaitAndDownload(ctx, req, task, base, token)
		artifacts = append(artifacts, produced...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
		}
	}

	return artifacts, errors.Join(errs...)
}

// startFileTask uploads one file to the per-file operation of req.Kind.
func (p *Processor) startFileTask(ctx context.Context, req *model.JobRequest, r io.Reader, name string) (*model.TaskInfo, error) {
	var region string
	if req.Region != nil {
		region = req.Region.Format()
	}

	switch req.Kind {
	case model.JobKindTextField:
		return p.service.ProcessTextField(ctx, client.TextFieldParams{Region: region, Languages: req.Languages}, r, name)
	case model.JobKindBarcodeField:
		return p.service.ProcessBarcodeField(ctx, client.BarcodeFieldParams{Region: region}, r, name)
	case model.JobKindCheckmarkField:
		return p.service.ProcessCheckmarkField(ctx, client.CheckmarkFieldParams{Region: region, CheckmarkType: "square"}, r, name)
	case model.JobKindMRZ:
		return p.service.ProcessMRZ(ctx, client.MRZParams{}, r, name)
	case model.JobKindBusinessCard:
		return p.service.ProcessBusinessCard(ctx, client.BusinessCardParams{Languages: req.Languages, ExportFormat: req.ExportFormats[0]}, r, name)
	default:
		return nil, invalidf("%s has no per-file operation", req.Kind)
	}
}

// submitPages adds each file as a page of the same task, in order. On error
// it returns the last task that accepted a page, if any.
func (p *Processor) submitPages(ctx context.Context, files []string) (*model.TaskInfo, error) {
	var task *model.TaskInfo

	for i, file := range files {
		var taskID string
		if task != nil {
			taskID = task.TaskID
		}

		log.Printf("[Processor] submitting %d/%d: %s", i+1, len(files), file)
		next, err := p.uploadFile(file, func(r io.Reader) (*model.TaskInfo, error) {
			return p.service.SubmitImage(ctx, client.SubmitParams{TaskID: taskID}, r, baseName(file))
		})
		if err != nil {
			return task, err
		}
		task = next
	}

	return task, nil
}

// uploadFile opens path and hands it to send, closing it afterwards.
func (p *Processor) uploadFile(path string, send func(io.Reader) (*model.TaskInfo, error)) (*model.TaskInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: err}
	}
	defer f.Close()

	task, err := send(f)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, &TransportError{Op: "upload " + filepath.Base(path), Err: err}
	}
	return task, nil
}
