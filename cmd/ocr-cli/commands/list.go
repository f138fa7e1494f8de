package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

// ListAction prints the tasks known to the service, newest first.
func ListAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(cmd.String("env"))
	if err != nil {
		return err
	}

	tasks, err := appCtx.Processor.ListTasks(ctx, cmd.Name)
	if err != nil {
		return err
	}

	renderTasksTable(os.Stdout, tasks)
	return nil
}

func renderTasksTable(w io.Writer, tasks []model.TaskInfo) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].RegistrationTime.After(tasks[j].RegistrationTime)
	})

	table := tablewriter.NewWriter(w)
	table.Header("Task ID", "Status", "Registered", "Files", "Credits", "Description")

	for _, t := range tasks {
		table.Append(
			t.TaskID,
			string(t.Status),
			t.RegistrationTime.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", t.FilesCount),
			fmt.Sprintf("%d", t.Credits),
			t.Description,
		)
	}

	table.Render()
}
