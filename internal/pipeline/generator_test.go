package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/core"
)

// scriptedLLM records the prompt and options it was called with and
// returns a canned output.
type scriptedLLM struct {
	output string
	err    error

	gotPrompt string
	gotOpts   core.GenerateOptions
}

func (s *scriptedLLM) Complete(ctx context.Context, prompt string, opts core.GenerateOptions) (string, error) {
	s.gotPrompt = prompt
	s.gotOpts = opts
	return s.output, s.err
}

func testHits() []Hit {
	return []Hit{
		{Chunk: core.Chunk{Text: "Paris is the capital of France.", Page: 1, Seq: 0}, Score: 0.91},
		{Chunk: core.Chunk{Text: "It has a population of over 2 million.", Page: 2, Seq: 1}, Score: 0.40},
	}
}

func TestGeneratorAnswer(t *testing.T) {
	ctx := context.Background()
	opts := core.GenerateOptions{MaxTokens: 512, Temperature: 0.7, TopP: 0.95, RepeatPenalty: 1.1}

	t.Run("prompt carries context and question", func(t *testing.T) {
		llm := &scriptedLLM{output: "Paris."}
		_, err := NewGenerator(llm, opts).Answer(ctx, "What is the capital?", testHits())
		require.NoError(t, err)

		assert.Contains(t, llm.gotPrompt, "Paris is the capital of France.\n\nIt has a population of over 2 million.")
		assert.Contains(t, llm.gotPrompt, "<|user|>What is the capital?")
		assert.Contains(t, llm.gotPrompt, "<|system|>")
		assert.Contains(t, llm.gotPrompt, "just say that you don't know")
		assert.Equal(t, opts, llm.gotOpts)
	})

	t.Run("extracts text after assistant marker", func(t *testing.T) {
		llm := &scriptedLLM{output: "<|system|>ignored<|user|>q<|assistant|>  The answer is Paris.  "}
		ans, err := NewGenerator(llm, opts).Answer(ctx, "q", testHits())
		require.NoError(t, err)
		assert.Equal(t, "The answer is Paris.", ans.Text)
	})

	t.Run("last marker wins", func(t *testing.T) {
		llm := &scriptedLLM{output: "<|assistant|>draft<|assistant|>final"}
		ans, err := NewGenerator(llm, opts).Answer(ctx, "q", testHits())
		require.NoError(t, err)
		assert.Equal(t, "final", ans.Text)
	})

	t.Run("falls back to full output without marker", func(t *testing.T) {
		llm := &scriptedLLM{output: "\n Paris is the capital. \n"}
		ans, err := NewGenerator(llm, opts).Answer(ctx, "q", testHits())
		require.NoError(t, err)
		assert.Equal(t, "Paris is the capital.", ans.Text)
	})

	t.Run("sources mirror retrieval order", func(t *testing.T) {
		llm := &scriptedLLM{output: "ok"}
		ans, err := NewGenerator(llm, opts).Answer(ctx, "q", testHits())
		require.NoError(t, err)
		require.Len(t, ans.Sources, 2)
		assert.Equal(t, core.Source{Content: "Paris is the capital of France.", Page: 1, Score: 0.91}, ans.Sources[0])
		assert.Equal(t, core.Source{Content: "It has a population of over 2 million.", Page: 2, Score: 0.40}, ans.Sources[1])
	})

	t.Run("model failure is a generation error", func(t *testing.T) {
		llm := &scriptedLLM{err: errors.New("decode error")}
		_, err := NewGenerator(llm, opts).Answer(ctx, "q", testHits())
		var genErr *core.GenerationError
		assert.ErrorAs(t, err, &genErr)
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := NewGenerator(nil, opts).Answer(ctx, "q", testHits())
		assert.ErrorIs(t, err, core.ErrNotInitialized)
	})
}
