package model

// WebSocket message types
const (
	WSMessageTypeStage    = "stage"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSStageMessage reports a finished pipeline stage
type WSStageMessage struct {
	Type         string         `json:"type"`
	TaskID       string         `json:"taskId"`
	Stage        Stage          `json:"stage"`
	Status       UserTaskStatus `json:"status"`
	RemoteTaskID string         `json:"remoteTaskId,omitempty"`
}

// WSCompleteMessage represents job completion
type WSCompleteMessage struct {
	Type   string    `json:"type"`
	TaskID string    `json:"taskId"`
	Result *UserTask `json:"result"`
}

// WSErrorMessage represents an error
type WSErrorMessage struct {
	Type   string  `json:"type"`
	TaskID string  `json:"taskId"`
	Error  WSError `json:"error"`
}

// WSError represents error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
