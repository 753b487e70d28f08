package pipeline

import (
	"strings"

	"docchat/internal/core"
)

// separators are tried in priority order; a piece that still exceeds the
// chunk size is re-split with the next one. The empty separator terminates
// the recursion: an unsplittable run is kept whole rather than broken.
var separators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// Chunker splits per-page document text into bounded, overlapping chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Split chunks each page independently and assigns a stable document-wide
// sequence index. Returns core.ErrEmptyDocument when no page has any text.
func (c *Chunker) Split(pages []core.Page) ([]core.Chunk, error) {
	var chunks []core.Chunk
	seq := 0
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		pieces := splitRecursive(page.Text, c.chunkSize, separators)
		for _, text := range assemble(pieces, c.chunkSize, c.overlap) {
			chunks = append(chunks, core.Chunk{Text: text, Page: page.Number, Seq: seq})
			seq++
		}
	}
	if len(chunks) == 0 {
		return nil, core.ErrEmptyDocument
	}
	return chunks, nil
}

// splitRecursive cuts text into pieces no longer than size, trying each
// separator in turn. Separators stay attached to the preceding piece so no
// characters are lost. A run that no separator can break is returned whole.
func splitRecursive(text string, size int, seps []string) []string {
	if len(text) <= size {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		return []string{text}
	}

	sep := seps[0]
	parts := strings.Split(text, sep)
	var out []string
	for i, part := range parts {
		piece := part
		if i < len(parts)-1 {
			piece += sep
		}
		if piece == "" {
			continue
		}
		if len(piece) > size {
			out = append(out, splitRecursive(piece, size, seps[1:])...)
		} else {
			out = append(out, piece)
		}
	}
	return out
}

// assemble concatenates pieces into chunks of at most size characters,
// seeding each new chunk with up to overlap trailing characters of the
// previous one. The overlap seed shrinks when the incoming piece needs the
// room, so only a single unsplittable piece can produce an oversized chunk.
func assemble(pieces []string, size, overlap int) []string {
	var chunks []string
	cur := ""
	seed := 0 // length of the carried-over prefix in cur
	for _, p := range pieces {
		if cur != "" && len(cur)+len(p) > size && len(cur) > seed {
			chunks = append(chunks, cur)
			tail := ""
			if overlap > 0 {
				t := overlap
				if t > len(cur) {
					t = len(cur)
				}
				if room := size - len(p); room < t {
					t = room
				}
				if t > 0 {
					tail = cur[len(cur)-t:]
				}
			}
			cur, seed = tail, len(tail)
		}
		cur += p
	}
	// Only emit the tail if it contains content beyond the overlap seed.
	if len(cur) > seed {
		chunks = append(chunks, cur)
	}
	return chunks
}
