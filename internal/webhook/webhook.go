// Package webhook sends outgoing map-event notifications and serves a small
// endpoint that accepts the same payload shape, for exercising integrations
// locally.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Payload is the wire shape for both directions.
type Payload struct {
	Action    string          `json:"action" validate:"required"`
	Data      json.RawMessage `json:"data,omitempty"`
	Source    string          `json:"source" validate:"required"`
	Timestamp time.Time       `json:"timestamp" validate:"required"`
}

var validate = validator.New()

// NewPayload fills in the source and timestamp for an outgoing event.
func NewPayload(action string, data any) (Payload, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Payload{}, fmt.Errorf("webhook: encode data: %w", err)
	}
	return Payload{
		Action:    action,
		Data:      raw,
		Source:    "mindmap-cli",
		Timestamp: time.Now().UTC(),
	}, nil
}

// Trigger POSTs the payload as JSON. Any non-2xx status is an error; the
// body is ignored either way.
func Trigger(ctx context.Context, client *http.Client, url string, p Payload) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("webhook: invalid payload: %w", err)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("webhook: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", uuid.NewString())

	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: %s returned %d", url, resp.StatusCode)
	}
	return nil
}
