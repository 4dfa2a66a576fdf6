// internal/service/template_params.go
package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TemplateParams is the structured payload of a channel-approved template
// message.
type TemplateParams struct {
	Name            string            `json:"name"`
	Namespace       string            `json:"namespace,omitempty"`
	Language        string            `json:"language,omitempty"`
	Category        string            `json:"category,omitempty"`
	ProcessedParams map[string]string `json:"processed_params,omitempty"`
}

// ParseTemplateParams decodes a campaign's raw template payload. The payload
// arrives either as a JSON object or as a JSON string wrapping one (both
// were accepted on write historically). A malformed payload is returned as
// an error — the caller decides what to do with it; the dispatch pipeline
// counts it as a per-contact failure rather than degrading to an empty
// template.
func ParseTemplateParams(raw json.RawMessage) (*TemplateParams, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var params TemplateParams
	if err := json.Unmarshal(raw, &params); err == nil {
		return &params, nil
	}

	// string-wrapped object
	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("template params: %w", err)
	}
	if strings.TrimSpace(wrapped) == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(wrapped), &params); err != nil {
		return nil, fmt.Errorf("template params: %w", err)
	}
	return &params, nil
}
