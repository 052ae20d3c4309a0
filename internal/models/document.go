package models

import "time"

// Document is an ingested text source. Content lives in its chunks; the
// document record carries identity, stats and the chunking settings used.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Text stats computed at ingest time
	CharCount int `json:"char_count"`
	WordCount int `json:"word_count"`
	LineCount int `json:"line_count"`

	ChunkCount int          `json:"chunk_count"`
	Chunking   ChunkingMeta `json:"chunking"`

	Metadata map[string]string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChunkingMeta records how a document was segmented.
type ChunkingMeta struct {
	Strategy string `json:"strategy"` // sentence, paragraph, fixed
	Size     int    `json:"size"`
	Overlap  int    `json:"overlap"`
}

// Chunk is one segment of a document. Start/End are offsets into the
// normalized document text, so a chunk is always a contiguous slice of it.
type Chunk struct {
	ID            string `json:"id"`
	DocumentID    string `json:"document_id" badgerhold:"index"`
	DocumentTitle string `json:"document_title"`
	Index         int    `json:"index"`
	Content       string `json:"content"`
	Start         int    `json:"start"`
	End           int    `json:"end"`

	// OverlapsPrevious is true when this chunk begins inside the previous
	// chunk's span.
	OverlapsPrevious bool `json:"overlaps_previous"`

	CreatedAt time.Time `json:"created_at"`
}

// ChunkHit is a scored chunk returned by an index search. Score is in [0, 1].
type ChunkHit struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
