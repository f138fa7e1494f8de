package handler

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ocrsdk/cloud-runner/internal/middleware"
	"github.com/ocrsdk/cloud-runner/internal/model"
	"github.com/ocrsdk/cloud-runner/internal/service"
	"github.com/ocrsdk/cloud-runner/pkg/response"
)

const recentTasksLimit = 50

// JobStarter runs one pipeline per task in the background.
type JobStarter interface {
	Start(task *model.UserTask, opts model.JobOptions, tempDir string) error
}

// JobsConfig holds the filesystem settings of the jobs API.
type JobsConfig struct {
	OutputDir     string
	TempDir       string
	MaxUploadSize int64
}

type JobsHandler struct {
	runner    JobStarter
	store     service.TaskStore
	validator *validator.Validate
	cfg       JobsConfig
}

func NewJobsHandler(runner JobStarter, store service.TaskStore, v *validator.Validate, cfg JobsConfig) *JobsHandler {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &JobsHandler{
		runner:    runner,
		store:     store,
		validator: v,
		cfg:       cfg,
	}
}

// Start handles POST /api/jobs. Every uploaded file becomes its own task;
// business cards get one task per requested format.
func (h *JobsHandler) Start(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.ValidationError(c, "Multipart form expected", nil)
	}

	req := model.JobStartForm{
		Kind:          firstValue(form.Value["kind"]),
		Language:      firstValue(form.Value["language"]),
		Profile:       firstValue(form.Value["profile"]),
		ExportFormats: form.Value["exportFormat"],
		Region:        firstValue(form.Value["region"]),
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	files := form.File["files"]
	if len(files) == 0 {
		return response.ValidationError(c, "At least one file is required", nil)
	}
	for _, f := range files {
		if h.cfg.MaxUploadSize > 0 && f.Size > h.cfg.MaxUploadSize {
			return response.ValidationError(c, "File size exceeds limit", map[string]interface{}{
				"file":     f.Filename,
				"maxSize":  h.cfg.MaxUploadSize,
				"fileSize": f.Size,
			})
		}
	}

	kind, _ := model.ParseJobKind(req.Kind)
	formatSets, err := exportFormatSets(kind, req.ExportFormats)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	var region *model.FieldRegion
	if req.Region != "" {
		region, err = model.ParseFieldRegion(req.Region)
		if err != nil {
			return response.ValidationError(c, err.Error(), nil)
		}
		if err := h.validator.Struct(region); err != nil {
			return response.ValidationError(c, "Invalid region", formatValidationErrors(err))
		}
	}

	userID := middleware.GetUserID(c)
	var tasks []*model.UserTask
	for _, fh := range files {
		for _, set := range formatSets {
			task, err := h.startTask(c, userID, kind, fh, set, req, region)
			if err != nil {
				log.Printf("[Jobs] failed to start %s: %v", fh.Filename, err)
				return response.ServiceError(c, "Failed to start job")
			}
			tasks = append(tasks, task)
		}
	}

	return response.Accepted(c, model.JobStartResponse{Tasks: tasks})
}

func (h *JobsHandler) startTask(c *fiber.Ctx, userID string, kind model.JobKind, fh *multipart.FileHeader, formats []model.ExportFormat, req model.JobStartForm, region *model.FieldRegion) (*model.UserTask, error) {
	id := uuid.New().String()

	tempDir := filepath.Join(h.cfg.TempDir, "ocr-upload-"+id)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	source := filepath.Join(tempDir, filepath.Base(fh.Filename))
	if err := c.SaveFile(fh, source); err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	task := &model.UserTask{
		ID:            id,
		UserID:        userID,
		SourceName:    fh.Filename,
		Kind:          kind,
		ExportFormats: formats,
		CreatedAt:     time.Now(),
	}
	opts := model.JobOptions{
		Kind:          string(kind),
		Sources:       []string{source},
		TargetDir:     filepath.Join(h.cfg.OutputDir, id),
		Language:      req.Language,
		ExportFormats: formatStrings(formats),
		Profile:       req.Profile,
		Region:        region,
	}

	if err := h.runner.Start(task, opts, tempDir); err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}
	return task, nil
}

// List handles GET /api/jobs
func (h *JobsHandler) List(c *fiber.Ctx) error {
	tasks, err := h.store.List(c.Context(), middleware.GetUserID(c), recentTasksLimit)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, fiber.Map{"tasks": tasks})
}

// Get handles GET /api/jobs/:taskId
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if taskID == "" {
		return response.ValidationError(c, "Task ID is required", nil)
	}

	task, err := h.store.Get(c.Context(), taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return response.NotFound(c, "Task not found")
		}
		return response.ServiceError(c, err.Error())
	}
	if task.UserID != middleware.GetUserID(c) {
		return response.NotFound(c, "Task not found")
	}

	return response.OK(c, task)
}

// Download handles GET /api/jobs/:taskId/files/:format
func (h *JobsHandler) Download(c *fiber.Ctx) error {
	task, err := h.store.Get(c.Context(), c.Params("taskId"))
	if err != nil || task.UserID != middleware.GetUserID(c) {
		return response.NotFound(c, "Task not found")
	}

	path, ok := task.Outputs[c.Params("format")]
	if !ok {
		return response.NotFound(c, "Result not found")
	}
	return c.Download(path)
}

// exportFormatSets returns the formats of each task started per file.
// Business cards accept one format per call, so each gets its own task.
func exportFormatSets(kind model.JobKind, raw []string) ([][]model.ExportFormat, error) {
	if kind != model.JobKindBusinessCard {
		formats, err := service.ParseFormats(kind, raw)
		if err != nil {
			return nil, err
		}
		return [][]model.ExportFormat{formats}, nil
	}

	var sets [][]model.ExportFormat
	seen := make(map[model.ExportFormat]bool)
	for _, entry := range raw {
		for _, s := range strings.Split(entry, ",") {
			if strings.TrimSpace(s) == "" {
				continue
			}
			formats, err := service.ParseFormats(kind, []string{s})
			if err != nil {
				return nil, err
			}
			if seen[formats[0]] {
				continue
			}
			seen[formats[0]] = true
			sets = append(sets, formats)
		}
	}
	if len(sets) == 0 {
		formats, err := service.ParseFormats(kind, nil)
		if err != nil {
			return nil, err
		}
		sets = append(sets, formats)
	}
	return sets, nil
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func formatStrings(formats []model.ExportFormat) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
