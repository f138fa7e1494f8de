package commands

import (
	"fmt"
	"io"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

// ConsoleReporter prints one line per stage event.
type ConsoleReporter struct {
	w io.Writer
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) OnJobEvent(event model.JobEvent) {
	if event.Failed() {
		if event.Task != nil {
			fmt.Fprintf(r.w, "%s failed: task %s: %v\n", event.Stage, event.Task.TaskID, event.Err)
			return
		}
		fmt.Fprintf(r.w, "%s failed: %v\n", event.Stage, event.Err)
		return
	}

	switch event.Stage {
	case model.StageUploaded:
		fmt.Fprintf(r.w, "uploaded: task %s (%s)\n", event.Task.TaskID, event.Task.Status)
	case model.StageProcessed:
		fmt.Fprintf(r.w, "processed: task %s (%s, %d credits)\n", event.Task.TaskID, event.Task.Status, event.Task.Credits)
	case model.StageDownloaded:
		for _, a := range event.Artifacts {
			fmt.Fprintf(r.w, "downloaded: %s\n", a.Path)
		}
	case model.StageListed:
		fmt.Fprintf(r.w, "listed: %d task(s)\n", len(event.Tasks))
	}
}
