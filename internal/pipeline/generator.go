package pipeline

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/core"
)

const assistantMarker = "<|assistant|>"

// promptTemplate is the grounded instruction template. The role markers
// match the chat format of small instruction-tuned models; providers that
// apply their own chat template simply ignore them and the marker-free
// fallback in extractAssistant handles their output.
const promptTemplate = `<|system|>You are a helpful assistant. Answer the question based on the following context.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
Use markdown formatting when appropriate for:
- Lists and bullet points
- Code blocks using triple backticks
- Emphasis using * or **
- Headers using #
- Tables when presenting structured data

Context: %s

<|user|>%s` + assistantMarker

// Generator turns a question plus retrieved chunks into a grounded answer.
type Generator struct {
	llm  core.LLMProvider
	opts core.GenerateOptions
}

func NewGenerator(llm core.LLMProvider, opts core.GenerateOptions) *Generator {
	return &Generator{llm: llm, opts: opts}
}

// Answer builds the prompt from the retrieved chunks (in retrieval order,
// joined by blank lines), drives the model, and extracts the answer text.
// Any failure comes back as a GenerationError; nothing is raised past here.
func (g *Generator) Answer(ctx context.Context, question string, hits []Hit) (core.Answer, error) {
	if g.llm == nil {
		return core.Answer{}, core.ErrNotInitialized
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Chunk.Text
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(texts, "\n\n"), question)

	raw, err := g.llm.Complete(ctx, prompt, g.opts)
	if err != nil {
		return core.Answer{}, &core.GenerationError{Err: err}
	}

	sources := make([]core.Source, len(hits))
	for i, h := range hits {
		sources[i] = core.Source{Content: h.Chunk.Text, Page: h.Chunk.Page, Score: h.Score}
	}
	return core.Answer{Text: extractAssistant(raw), Sources: sources}, nil
}

// extractAssistant returns the text after the last assistant marker, or the
// whole trimmed output for models that do not echo the marker.
func extractAssistant(full string) string {
	if i := strings.LastIndex(full, assistantMarker); i >= 0 {
		return strings.TrimSpace(full[i+len(assistantMarker):])
	}
	return strings.TrimSpace(full)
}
