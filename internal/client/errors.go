package client

import (
	"encoding/json"
	"fmt"
)

// APIError is an error response from the recognition service
type APIError struct {
	StatusCode int
	Code       string
	Target     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HttpCode: %d, ApiCode: %s, Target: %s, Message: %s", e.StatusCode, e.Code, e.Target, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Target  string `json:"target"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseAPIError builds an APIError from a non-2xx response body.
// Bodies that are not the documented JSON envelope become the message.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && (env.Error.Code != "" || env.Error.Message != "") {
		apiErr.Code = env.Error.Code
		apiErr.Target = env.Error.Target
		apiErr.Message = env.Error.Message
		return apiErr
	}

	apiErr.Message = string(body)
	return apiErr
}
