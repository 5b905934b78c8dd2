package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Status int
	Method string
	Path   string
	Body   string
}

func (e *HTTPError) Error() string {
	msg := e.serverMessage()
	if msg != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.Status)
}

// serverMessage pulls a human message out of the error body when the
// backend sent one.
func (e *HTTPError) serverMessage() string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	body := strings.TrimSpace(e.Body)
	if len(body) > 120 {
		body = body[:120]
	}
	return body
}

// ErrGradeRejected reports a grading response the backend marked as
// unsuccessful, or one that carried no feedback payload at all.
type ErrGradeRejected struct {
	Message string
}

func (e *ErrGradeRejected) Error() string {
	if e.Message == "" {
		return "grading request rejected"
	}
	return "grading request rejected: " + e.Message
}
