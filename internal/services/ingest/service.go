// Package ingest turns raw text into a stored, chunked document ready for
// retrieval.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
	"github.com/FellowTraveler/WebRAgent/internal/segmenter"
)

// Service chunks and persists documents.
type Service struct {
	store  interfaces.ChunkStore
	cfg    *common.IngestConfig
	logger arbor.ILogger
}

func NewService(store interfaces.ChunkStore, cfg *common.IngestConfig, logger arbor.ILogger) *Service {
	return &Service{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Request describes one document to ingest. Zero-valued chunking fields use
// the configured defaults. ID is optional; when set, an existing document
// with that ID is replaced.
type Request struct {
	ID       string
	Title    string
	Content  string
	Metadata map[string]string

	Strategy string
	Size     int
	Overlap  int
}

// Ingest chunks the content and stores the document with its chunks.
// Re-ingesting with the same ID supersedes the previous chunks.
func (s *Service) Ingest(ctx context.Context, req Request) (*models.Document, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("document content is empty")
	}

	opts, err := s.resolveOptions(req)
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = common.NewDocumentID()
	}
	title := req.Title
	if title == "" {
		title = "Untitled"
	}

	segments := segmenter.Split(req.Content, opts)
	now := time.Now().UTC()

	chunks := make([]models.Chunk, 0, len(segments))
	for i, seg := range segments {
		chunks = append(chunks, models.Chunk{
			ID:               common.NewChunkID(),
			DocumentID:       id,
			DocumentTitle:    title,
			Index:            i,
			Content:          seg.Text,
			Start:            seg.Start,
			End:              seg.End,
			OverlapsPrevious: seg.OverlapsPrevious,
			CreatedAt:        now,
		})
	}

	doc := &models.Document{
		ID:        id,
		Title:     title,
		CharCount: len(req.Content),
		WordCount: len(strings.Fields(req.Content)),
		LineCount: countLines(req.Content),
		Chunking: models.ChunkingMeta{
			Strategy: string(opts.Strategy),
			Size:     opts.Size,
			Overlap:  opts.Overlap,
		},
		Metadata: req.Metadata,
	}

	if err := s.store.SaveDocument(ctx, doc, chunks); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info().
		Str("document_id", id).
		Str("title", title).
		Str("strategy", string(opts.Strategy)).
		Int("chunks", len(chunks)).
		Msg("Document ingested")
	return doc, nil
}

func (s *Service) resolveOptions(req Request) (segmenter.Options, error) {
	name := req.Strategy
	if name == "" {
		name = s.cfg.ChunkStrategy
	}
	strategy, err := segmenter.ParseStrategy(name)
	if err != nil {
		return segmenter.Options{}, err
	}

	size := req.Size
	if size <= 0 {
		size = s.cfg.ChunkSize
	}
	// Overlap 0 means the configured default; pass a negative value for none.
	overlap := req.Overlap
	if overlap == 0 {
		overlap = s.cfg.ChunkOverlap
	} else if overlap < 0 {
		overlap = 0
	}

	return segmenter.Options{Strategy: strategy, Size: size, Overlap: overlap}, nil
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
