package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerPostsJSON(t *testing.T) {
	var got Payload
	var contentType, deliveryID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		deliveryID = r.Header.Get("X-Delivery-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p, err := NewPayload("node_added", map[string]string{"id": "node-abc"})
	require.NoError(t, err)
	require.NoError(t, Trigger(context.Background(), srv.Client(), srv.URL, p))

	assert.Equal(t, "application/json", contentType)
	assert.NotEmpty(t, deliveryID)
	assert.Equal(t, "node_added", got.Action)
	assert.Equal(t, "mindmap-cli", got.Source)
	assert.False(t, got.Timestamp.IsZero())
	assert.JSONEq(t, `{"id":"node-abc"}`, string(got.Data))
}

func TestTriggerNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	p, err := NewPayload("map_saved", nil)
	require.NoError(t, err)
	err = Trigger(context.Background(), srv.Client(), srv.URL, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestTriggerRejectsInvalidPayload(t *testing.T) {
	err := Trigger(context.Background(), nil, "http://localhost:0", Payload{Action: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
}

func TestIncomingEndpoint(t *testing.T) {
	var received []Payload
	router := NewRouter(nil, func(p Payload) { received = append(received, p) })

	body, _ := json.Marshal(Payload{
		Action:    "add_node",
		Data:      json.RawMessage(`{"label":"from zapier"}`),
		Source:    "zapier",
		Timestamp: time.Now().UTC(),
	})
	req := httptest.NewRequest(http.MethodPost, "/hooks/incoming", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, received, 1)
	assert.Equal(t, "add_node", received[0].Action)
	assert.Equal(t, "zapier", received[0].Source)
}

func TestIncomingEndpointRejectsBadRequests(t *testing.T) {
	router := NewRouter(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/hooks/incoming", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Valid JSON, missing required fields.
	req = httptest.NewRequest(http.MethodPost, "/hooks/incoming", strings.NewReader(`{"action":"x"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
