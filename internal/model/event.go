package model

import "time"

// JobEvent is published at every stage boundary of a pipeline.
type JobEvent struct {
	Stage     Stage
	Task      *TaskInfo
	Tasks     []TaskInfo
	Artifacts []ResultArtifact
	Err       error
	Token     any
	At        time.Time
}

// Failed reports whether the stage ended with an error.
func (e JobEvent) Failed() bool {
	return e.Err != nil
}
