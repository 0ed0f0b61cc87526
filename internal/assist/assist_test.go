package assist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIRequestShape(t *testing.T) {
	var gotAuth string
	var gotBody openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": "three ideas"}}},
		})
	}))
	defer srv.Close()

	c, err := New(ProviderOpenAI, "sk-test", nil)
	require.NoError(t, err)
	c.Endpoint = srv.URL

	text, err := c.Complete(context.Background(), "brainstorm")
	require.NoError(t, err)
	assert.Equal(t, "three ideas", text)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
	assert.Equal(t, "brainstorm", gotBody.Messages[0].Content)
}

func TestAnthropicRequestShape(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "an outline"}},
		})
	}))
	defer srv.Close()

	c, err := New(ProviderAnthropic, "ak-test", nil)
	require.NoError(t, err)
	c.Endpoint = srv.URL

	text, err := c.Complete(context.Background(), "expand this node")
	require.NoError(t, err)
	assert.Equal(t, "an outline", text)
	assert.Equal(t, "ak-test", gotKey)
	assert.Equal(t, anthropicVersion, gotVersion)
	assert.Positive(t, gotBody.MaxTokens)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "expand this node", gotBody.Messages[0].Content)
}

func TestNon2xxSurfacesAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "invalid api key"}})
	}))
	defer srv.Close()

	c, err := New(ProviderOpenAI, "sk-bad", nil)
	require.NoError(t, err)
	c.Endpoint = srv.URL

	_, err = c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assist:")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestNewRejectsMisconfiguration(t *testing.T) {
	_, err := New("cohere", "k", nil)
	require.Error(t, err)
	_, err = New(ProviderOpenAI, "", nil)
	require.Error(t, err)
}

func TestCancelerSupersedesInFlightRequest(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	served := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served++
		first := served == 1
		mu.Unlock()
		if first {
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "fresh"}}},
		})
	}))
	defer srv.Close()

	c, err := New(ProviderOpenAI, "sk-test", nil)
	require.NoError(t, err)
	c.Endpoint = srv.URL

	var canceler Canceler
	ctx1, _ := canceler.Next(context.Background())

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Complete(ctx1, "slow question")
		firstErr <- err
	}()

	// Give the first request time to reach the server before superseding it.
	time.Sleep(50 * time.Millisecond)
	ctx2, cancel2 := canceler.Next(context.Background())
	defer cancel2()

	text, err := c.Complete(ctx2, "new question")
	require.NoError(t, err)
	assert.Equal(t, "fresh", text)

	require.ErrorIs(t, <-firstErr, context.Canceled, "the superseded request must be cancelled")
	close(release)
}
