package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbeddingServer(t *testing.T, status int, vec []float32, hits *atomic.Int32, lastInput *atomic.Value) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}

		var body struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && len(body.Input) > 0 {
			lastInput.Store(body.Input[0])
		}

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"model not loaded","type":"server_error"}}`))
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"model":  body.Model,
			"data": []map[string]interface{}{
				{"object": "embedding", "index": 0, "embedding": vec},
			},
			"usage": map[string]int{"prompt_tokens": 3, "total_tokens": 3},
		})
	}))
}

func TestOpenAIModel_Encode(t *testing.T) {
	var hits atomic.Int32
	var lastInput atomic.Value
	server := newEmbeddingServer(t, http.StatusOK, []float32{1, 2, 2}, &hits, &lastInput)
	defer server.Close()

	model, err := NewOpenAIModel(OpenAIConfig{BaseURL: server.URL + "/v1", Model: "intfloat/multilingual-e5-small"})
	require.NoError(t, err)

	vec, err := model.Encode(context.Background(), "query: test")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 2}, vec)
	assert.Equal(t, "query: test", lastInput.Load())
}

func TestOpenAILoader_WarmsUpThenEmbeds(t *testing.T) {
	var hits atomic.Int32
	var lastInput atomic.Value
	server := newEmbeddingServer(t, http.StatusOK, []float32{1, 2, 2}, &hits, &lastInput)
	defer server.Close()

	e := NewQueryEmbedder(NewOpenAILoader(OpenAIConfig{BaseURL: server.URL + "/v1", Model: "e5"}), 3, nil)

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load(), "one warm-up call plus one query")
	assert.Equal(t, "query: hello", lastInput.Load())
	assert.InDeltaSlice(t, []float32{1.0 / 3, 2.0 / 3, 2.0 / 3}, vec, 1e-6)
}

func TestOpenAILoader_ServerErrorIsLoadFailure(t *testing.T) {
	var hits atomic.Int32
	var lastInput atomic.Value
	server := newEmbeddingServer(t, http.StatusServiceUnavailable, nil, &hits, &lastInput)
	defer server.Close()

	_, err := NewOpenAILoader(OpenAIConfig{BaseURL: server.URL + "/v1", Model: "e5"})(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warm up e5")
}

func TestNewOpenAIModel_RequiresModel(t *testing.T) {
	_, err := NewOpenAIModel(OpenAIConfig{BaseURL: "http://localhost"})
	assert.Error(t, err)
}
