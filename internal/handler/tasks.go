package handler

import (
	"context"
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/ocrsdk/cloud-runner/internal/model"
	"github.com/ocrsdk/cloud-runner/internal/service"
	"github.com/ocrsdk/cloud-runner/pkg/response"
)

// RemoteLister lists the tasks known to the recognition service.
type RemoteLister interface {
	ListTasks(ctx context.Context, token any) ([]model.TaskInfo, error)
}

type TasksHandler struct {
	lister RemoteLister
}

func NewTasksHandler(lister RemoteLister) *TasksHandler {
	return &TasksHandler{lister: lister}
}

// List handles GET /api/remote-tasks, newest registration first.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	tasks, err := h.lister.ListTasks(c.Context(), nil)
	if err != nil {
		var terr *service.TransportError
		if errors.As(err, &terr) {
			return response.UpstreamError(c, err.Error())
		}
		return response.ServiceError(c, err.Error())
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].RegistrationTime.After(tasks[j].RegistrationTime)
	})

	if tasks == nil {
		tasks = []model.TaskInfo{}
	}
	return response.OK(c, model.RemoteTaskListResponse{Tasks: tasks})
}
