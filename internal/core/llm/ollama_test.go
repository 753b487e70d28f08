package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/core"
)

func TestOllamaLLMComplete(t *testing.T) {
	t.Run("sends raw unstreamed prompt with sampling options", func(t *testing.T) {
		var got generateRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/generate", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(generateResponse{Response: "<|assistant|>Paris.", Done: true})
		}))
		defer srv.Close()

		provider := NewOllamaLLM(srv.URL, "tinyllama")
		out, err := provider.Complete(context.Background(), "<|user|>capital?<|assistant|>", core.GenerateOptions{
			MaxTokens:     512,
			Temperature:   0.7,
			TopP:          0.95,
			RepeatPenalty: 1.1,
		})
		require.NoError(t, err)
		assert.Equal(t, "<|assistant|>Paris.", out)

		assert.Equal(t, "tinyllama", got.Model)
		assert.Equal(t, "<|user|>capital?<|assistant|>", got.Prompt)
		assert.True(t, got.Raw)
		assert.False(t, got.Stream)
		require.NotNil(t, got.Options)
		assert.Equal(t, 512, got.Options.NumPredict)
		assert.InDelta(t, 0.7, got.Options.Temperature, 1e-9)
		assert.InDelta(t, 0.95, got.Options.TopP, 1e-9)
		assert.InDelta(t, 1.1, got.Options.RepeatPenalty, 1e-9)
	})

	t.Run("non-200 surfaces the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
		}))
		defer srv.Close()

		provider := NewOllamaLLM(srv.URL, "missing")
		_, err := provider.Complete(context.Background(), "hi", core.GenerateOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
		assert.Contains(t, err.Error(), "model not found")
	})

	t.Run("cancelled context aborts the call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		provider := NewOllamaLLM(srv.URL, "tinyllama")
		_, err := provider.Complete(ctx, "hi", core.GenerateOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOllamaEmbedder(t *testing.T) {
	t.Run("one call per text, float32 conversion", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/embeddings", r.URL.Path)
			var req embedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nomic-embed-text", req.Model)
			n := calls.Add(1)
			_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{float64(n), 0.5, -0.25}})
		}))
		defer srv.Close()

		embedder := NewOllamaEmbedder(srv.URL, "nomic-embed-text")
		vecs, err := embedder.EmbedTexts(context.Background(), []string{"first", "second"})
		require.NoError(t, err)
		require.Len(t, vecs, 2)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, []float32{1, 0.5, -0.25}, vecs[0])
		assert.Equal(t, []float32{2, 0.5, -0.25}, vecs[1])
	})

	t.Run("failure names the offending text", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) > 1 {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{1}})
		}))
		defer srv.Close()

		embedder := NewOllamaEmbedder(srv.URL, "nomic-embed-text")
		_, err := embedder.EmbedTexts(context.Background(), []string{"ok", "boom"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embed text 1")
		assert.Contains(t, err.Error(), "status 503")
	})

	t.Run("empty input", func(t *testing.T) {
		embedder := NewOllamaEmbedder("http://unused.invalid", "nomic-embed-text")
		vecs, err := embedder.EmbedTexts(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, vecs)
	})
}

func TestNewPool(t *testing.T) {
	t.Run("rejects unknown provider", func(t *testing.T) {
		_, err := NewPool("openai", "", "")
		assert.Error(t, err)
	})

	t.Run("ollama pool caches providers per model", func(t *testing.T) {
		pool, err := NewPool(ProviderOllama, "", "http://localhost:11434")
		require.NoError(t, err)

		ctx := context.Background()
		a, err := pool.Embedder(ctx, "nomic-embed-text")
		require.NoError(t, err)
		b, err := pool.Embedder(ctx, "nomic-embed-text")
		require.NoError(t, err)
		assert.Same(t, a.(*OllamaEmbedder), b.(*OllamaEmbedder))

		l1, err := pool.LLM(ctx, "tinyllama")
		require.NoError(t, err)
		l2, err := pool.LLM(ctx, "tinyllama")
		require.NoError(t, err)
		assert.Same(t, l1.(*OllamaLLM), l2.(*OllamaLLM))
	})
}
