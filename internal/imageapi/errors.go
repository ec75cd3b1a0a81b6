package imageapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the Images API.
type APIError struct {
	Status  int
	Code    string
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func parseError(status int, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return &APIError{
			Status:  status,
			Message: strings.TrimSpace(string(body)),
		}
	}
	return &APIError{
		Status:  status,
		Code:    envelope.Error.Code,
		Type:    envelope.Error.Type,
		Message: envelope.Error.Message,
	}
}
