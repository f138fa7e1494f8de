package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrsdk/cloud-runner/internal/model"
	"github.com/ocrsdk/cloud-runner/internal/service"
)

type memoryStore struct {
	mu    sync.Mutex
	tasks map[string]model.UserTask
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tasks: map[string]model.UserTask{}}
}

func (s *memoryStore) Save(ctx context.Context, task *model.UserTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

func (s *memoryStore) Get(ctx context.Context, id string) (*model.UserTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, service.ErrTaskNotFound
	}
	return &task, nil
}

func (s *memoryStore) List(ctx context.Context, userID string, limit int) ([]*model.UserTask, error) {
	return nil, nil
}

type hubMessage struct {
	kind   string
	taskID string
	detail string
}

type fakeHub struct {
	mu       sync.Mutex
	messages []hubMessage
}

func (h *fakeHub) BroadcastStage(taskID string, stage model.Stage, status model.UserTaskStatus, remoteTaskID string) {
	h.record(hubMessage{"stage", taskID, fmt.Sprintf("%s/%s", stage, status)})
}

func (h *fakeHub) BroadcastComplete(taskID string, result *model.UserTask) {
	h.record(hubMessage{"complete", taskID, string(result.Status)})
}

func (h *fakeHub) BroadcastError(taskID string, code, message string) {
	h.record(hubMessage{"error", taskID, code})
}

func (h *fakeHub) record(m hubMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, m)
}

// scriptedProcessor replays events to a subscriber as a pipeline would.
type scriptedProcessor struct {
	subscriber service.Subscriber
	events     []model.JobEvent
	err        error
}

func (p *scriptedProcessor) RunJob(ctx context.Context, opts model.JobOptions, token any) ([]model.ResultArtifact, error) {
	for _, e := range p.events {
		e.Token = token
		p.subscriber.OnJobEvent(e)
	}
	return nil, p.err
}

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
	data map[string]string
}

func (s *fakeStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[string]string{}
	}
	s.keys = append(s.keys, key)
	s.data[key] = string(b)
	return s.PublicURL(key), nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

func TestPipelineRunner_CompletesTask(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(out, []byte("text"), 0644))
	tempDir := filepath.Join(dir, "upload")
	require.NoError(t, os.MkdirAll(tempDir, 0755))

	remote := &model.TaskInfo{TaskID: "remote-1", Status: model.TaskStatusCompleted}
	proc := &scriptedProcessor{events: []model.JobEvent{
		{Stage: model.StageUploaded, Task: &model.TaskInfo{TaskID: "remote-1", Status: model.TaskStatusQueued}},
		{Stage: model.StageProcessed, Task: remote},
		{Stage: model.StageDownloaded, Task: remote, Artifacts: []model.ResultArtifact{{Format: model.FormatTxt, Path: out}}},
	}}

	store := newMemoryStore()
	hub := &fakeHub{}
	storage := &fakeStorage{}
	runner := NewPipelineRunner(context.Background(), proc, store, hub, NewArtifactMirror(storage))
	proc.subscriber = runner

	task := &model.UserTask{ID: "user-task-1", SourceName: "a.png", Kind: model.JobKindImage, CreatedAt: time.Now()}
	require.NoError(t, runner.Start(task, model.JobOptions{}, tempDir))
	runner.Wait()

	saved, err := store.Get(context.Background(), "user-task-1")
	require.NoError(t, err)
	assert.Equal(t, model.UserTaskReady, saved.Status)
	assert.Equal(t, "remote-1", saved.RemoteTaskID)
	assert.Equal(t, model.TaskStatusCompleted, saved.RemoteStatus)
	assert.Equal(t, map[string]string{"txt": out}, saved.Outputs)
	assert.Equal(t, map[string]string{"txt": "https://cdn.example/results/user-task-1/a.txt"}, saved.MirrorURLs)
	assert.NotNil(t, saved.CompletedAt)

	assert.Equal(t, "text", storage.data["results/user-task-1/a.txt"])
	assert.NoDirExists(t, tempDir)

	assert.Equal(t, []hubMessage{
		{"stage", "user-task-1", "uploaded/processing"},
		{"stage", "user-task-1", "processed/processing"},
		{"stage", "user-task-1", "downloaded/ready"},
		{"complete", "user-task-1", "ready"},
	}, hub.messages)
}

func TestPipelineRunner_FailsTask(t *testing.T) {
	failed := &model.TaskInfo{TaskID: "remote-2", Status: model.TaskStatusNotEnoughCredits}
	jobErr := &service.JobFailedError{TaskID: "remote-2", Status: model.TaskStatusNotEnoughCredits}
	proc := &scriptedProcessor{
		events: []model.JobEvent{
			{Stage: model.StageUploaded, Task: &model.TaskInfo{TaskID: "remote-2", Status: model.TaskStatusQueued}},
			{Stage: model.StageProcessed, Task: failed, Err: jobErr},
		},
		err: jobErr,
	}

	store := newMemoryStore()
	hub := &fakeHub{}
	runner := NewPipelineRunner(context.Background(), proc, store, hub, nil)
	proc.subscriber = runner

	require.NoError(t, runner.Start(&model.UserTask{ID: "user-task-2"}, model.JobOptions{}, ""))
	runner.Wait()

	saved, err := store.Get(context.Background(), "user-task-2")
	require.NoError(t, err)
	assert.Equal(t, model.UserTaskFailed, saved.Status)
	require.NotNil(t, saved.Error)
	assert.Contains(t, *saved.Error, "NotEnoughCredits")

	require.Len(t, hub.messages, 2)
	assert.Equal(t, hubMessage{"error", "user-task-2", "NOT_ENOUGH_CREDITS"}, hub.messages[1])
}

func TestPipelineRunner_IgnoresForeignTokens(t *testing.T) {
	store := newMemoryStore()
	hub := &fakeHub{}
	runner := NewPipelineRunner(context.Background(), nil, store, hub, nil)

	runner.OnJobEvent(model.JobEvent{Stage: model.StageListed, Token: 42})
	runner.OnJobEvent(model.JobEvent{Stage: model.StageUploaded, Token: "unknown"})

	assert.Empty(t, hub.messages)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR", errorCode(&service.ValidationError{Msg: "bad"}))
	assert.Equal(t, "JOB_FAILED", errorCode(&service.JobFailedError{Status: model.TaskStatusFailed}))
	assert.Equal(t, "STORAGE_ERROR", errorCode(&service.ResourceError{Path: "/x", Err: os.ErrPermission}))
	assert.Equal(t, "SERVICE_ERROR", errorCode(&service.TransportError{Op: "upload", Err: io.ErrUnexpectedEOF}))
}
