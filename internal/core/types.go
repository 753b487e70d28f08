package core

// Page holds the extracted text of a single document page.
type Page struct {
	Number int
	Text   string
}

// Chunk is one bounded text segment produced from a document page.
//
// Page: 1-based page the text came from.
// Seq:  stable, zero-based position of the chunk across the whole document.
type Chunk struct {
	Text string
	Page int
	Seq  int
}

// Source describes one retrieved chunk that grounded an answer.
type Source struct {
	Content string  `json:"content"`
	Page    int     `json:"page"`
	Score   float32 `json:"score"`
}

// Answer is the result of one question against an indexed document.
// Sources are listed in retrieval order (most similar first).
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// GenerateOptions carries the sampling parameters for answer generation.
// All of them are tunable through configuration.
type GenerateOptions struct {
	MaxTokens     int
	Temperature   float64
	TopP          float64
	RepeatPenalty float64
}
