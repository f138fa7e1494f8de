package service

import (
	"context"
	"log"
	"time"

	"github.com/ocrsdk/cloud-runner/internal/client"
	"github.com/ocrsdk/cloud-runner/internal/model"
)

// defaultPollDelay is used when the service does not suggest a delay.
const defaultPollDelay = 2 * time.Second

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Poller waits for remote tasks to reach a non-pending status.
type Poller struct {
	service client.RecognitionService
	sleep   SleepFunc
}

// NewPoller creates a poller. A nil sleep uses a timer bound to ctx.
func NewPoller(svc client.RecognitionService, sleep SleepFunc) *Poller {
	if sleep == nil {
		sleep = sleepContext
	}
	return &Poller{service: svc, sleep: sleep}
}

// Wait checks the task's status until it is no longer Queued or InProgress.
// A task that is already terminal is returned without any status call.
// Transport errors stop polling immediately and are not retried.
func (p *Poller) Wait(ctx context.Context, task *model.TaskInfo) (*model.TaskInfo, error) {
	if task.Status.IsTerminal() {
		return task, nil
	}

	attempt := 0
	for {
		attempt++
		current, err := p.service.GetTaskStatus(ctx, task.TaskID)
		if err != nil {
			log.Printf("[Poller] status #%d (task=%s) error: %v", attempt, task.TaskID, err)
			return task, &TransportError{Op: "get task status", Err: err}
		}
		task = current

		log.Printf("[Poller] status #%d (task=%s): %s", attempt, task.TaskID, task.Status)

		if !task.Status.IsPending() {
			return task, nil
		}

		delay := task.PollDelay()
		if delay <= 0 {
			delay = defaultPollDelay
		}
		if err := p.sleep(ctx, delay); err != nil {
			return task, &TransportError{Op: "wait for task", Err: err}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
