package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ocrsdk/cloud-runner/internal/client"
	"github.com/ocrsdk/cloud-runner/internal/model"
)

type statusReply struct {
	status model.TaskStatus
	delay  int
	err    error
}

// fakeService scripts the remote service. Status checks pop replies from
// statuses and report Completed once the script runs out.
type fakeService struct {
	mu sync.Mutex

	nextID        int
	calls         []string
	uploads       []string
	bodies        []string
	submitTaskIDs []string
	statuses      []statusReply
	statusCalls   int
	resultURLs    []string
	failOn        map[string]error
	tasks         []model.TaskInfo
}

func newFakeService(resultURLs ...string) *fakeService {
	return &fakeService{resultURLs: resultURLs, failOn: map[string]error{}}
}

func (f *fakeService) start(op, taskID, name string, body io.Reader) (*model.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, op)
	if body != nil {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		f.uploads = append(f.uploads, name)
		f.bodies = append(f.bodies, string(data))
	}
	if err := f.failOn[op]; err != nil {
		return nil, err
	}

	if taskID == "" {
		f.nextID++
		taskID = fmt.Sprintf("task-%d", f.nextID)
	}
	status := model.TaskStatusQueued
	if op == "SubmitImage" {
		status = model.TaskStatusSubmitted
	}
	return &model.TaskInfo{TaskID: taskID, Status: status, RequestStatusDelay: 500}, nil
}

func (f *fakeService) ProcessImage(ctx context.Context, params client.ImageParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return f.start("ProcessImage", "", name, file)
}

func (f *fakeService) SubmitImage(ctx context.Context, params client.SubmitParams, file io.Reader, name string) (*model.TaskInfo, error) {
	f.mu.Lock()
	f.submitTaskIDs = append(f.submitTaskIDs, params.TaskID)
	f.mu.Unlock()
	return f.start("SubmitImage", params.TaskID, name, file)
}

func (f *fakeService) ProcessDocument(ctx context.Context, params client.DocumentParams) (*model.TaskInfo, error) {
	return f.start("ProcessDocument", params.TaskID, "", nil)
}

func (f *fakeService) ProcessFields(ctx context.Context, params client.FieldsParams, settings io.Reader, name string) (*model.TaskInfo, error) {
	return f.start("ProcessFields", params.TaskID, name, settings)
}

func (f *fakeService) ProcessTextField(ctx context.Context, params client.TextFieldParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return f.start("ProcessTextField", "", name, file)
}

func (f *fakeService) ProcessBarcodeField(ctx context.Context, params client.BarcodeFieldParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return f.start("ProcessBarcodeField", "", name, file)
}

func (f *fakeService) ProcessCheckmarkField(ctx context.Context, params client.CheckmarkFieldParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return f.start("ProcessCheckmarkField", "", name, file)
}

func (f *fakeService) ProcessBusinessCard(ctx context.Context, params client.BusinessCardParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return f.start("ProcessBusinessCard", "", name, file)
}

func (f *fakeService) ProcessMRZ(ctx context.Context, params client.MRZParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return f.start("ProcessMRZ", "", name, file)
}

func (f *fakeService) GetTaskStatus(ctx context.Context, taskID string) (*model.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "GetTaskStatus")
	f.statusCalls++

	reply := statusReply{status: model.TaskStatusCompleted}
	if len(f.statuses) > 0 {
		reply = f.statuses[0]
		f.statuses = f.statuses[1:]
	}
	if reply.err != nil {
		return nil, reply.err
	}

	task := &model.TaskInfo{TaskID: taskID, Status: reply.status, RequestStatusDelay: reply.delay}
	if reply.status == model.TaskStatusCompleted {
		task.ResultURLs = append([]string(nil), f.resultURLs...)
	}
	if reply.status == model.TaskStatusFailed {
		task.Error = "image is unreadable"
	}
	return task, nil
}

func (f *fakeService) ListTasks(ctx context.Context) ([]model.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ListTasks")
	if err := f.failOn["ListTasks"]; err != nil {
		return nil, err
	}
	return f.tasks, nil
}

func (f *fakeService) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

// fakeDownloader serves result bodies by URL.
type fakeDownloader struct {
	mu       sync.Mutex
	contents map[string]string
	errs     map[string]error
	requests []string
}

func newFakeDownloader() *fakeDownloader {
	return &fakeDownloader{contents: map[string]string{}, errs: map[string]error{}}
}

func (d *fakeDownloader) DownloadResult(ctx context.Context, url string) (io.ReadCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, url)
	if err := d.errs[url]; err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("empty result url")
	}
	return io.NopCloser(strings.NewReader(d.contents[url])), nil
}

// recordingSleep records requested delays without waiting.
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// eventLog collects published events.
type eventLog struct {
	mu     sync.Mutex
	events []model.JobEvent
}

func (l *eventLog) OnJobEvent(e model.JobEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) stages() []model.Stage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Stage, len(l.events))
	for i, e := range l.events {
		out[i] = e.Stage
	}
	return out
}

func (l *eventLog) last(stage model.Stage) model.JobEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Stage == stage {
			return l.events[i]
		}
	}
	return model.JobEvent{}
}

type harness struct {
	svc        *fakeService
	downloader *fakeDownloader
	sleeper    *recordingSleep
	events     *eventLog
	processor  *Processor
}

func newHarness(t *testing.T, resultURLs ...string) *harness {
	t.Helper()
	h := &harness{
		svc:        newFakeService(resultURLs...),
		downloader: newFakeDownloader(),
		sleeper:    &recordingSleep{},
		events:     &eventLog{},
	}
	notifier := NewNotifier()
	notifier.Subscribe(h.events)
	h.processor = NewProcessor(h.svc, h.downloader, notifier, nil, h.sleeper.sleep)
	return h
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
