// Package badger persists documents and chunks in BadgerDB via badgerhold,
// and provides the local keyword index used by the document retrieval
// backend.
package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// Store wraps a badgerhold instance holding documents and chunks.
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewStore opens (or creates) the database at path.
func NewStore(path string, logger arbor.ILogger) (*Store, error) {
	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("Opened badger store")

	return &Store{
		store:  store,
		logger: logger,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.store.Close()
}

// SaveDocument stores a document and its chunks. Existing chunks for the
// document are removed first, so a re-ingest fully supersedes the old set.
func (s *Store) SaveDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	doc.ChunkCount = len(chunks)

	if err := s.store.DeleteMatching(&models.Chunk{}, badgerhold.Where("DocumentID").Eq(doc.ID)); err != nil {
		return fmt.Errorf("failed to delete previous chunks for %s: %w", doc.ID, err)
	}

	if err := s.store.Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}

	for i := range chunks {
		if chunks[i].CreatedAt.IsZero() {
			chunks[i].CreatedAt = now
		}
		if err := s.store.Upsert(chunks[i].ID, &chunks[i]); err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", chunks[i].ID, err)
		}
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("title", doc.Title).
		Int("chunks", len(chunks)).
		Msg("Saved document")

	return nil
}

// GetDocument returns a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.store.Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("document %s not found", id)
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}

// ListDocuments returns all stored documents.
func (s *Store) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	var docs []models.Document
	if err := s.store.Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	out := make([]*models.Document, len(docs))
	for i := range docs {
		out[i] = &docs[i]
	}
	return out, nil
}

// CountChunks returns the number of chunks stored for a document.
func (s *Store) CountChunks(ctx context.Context, documentID string) (int, error) {
	count, err := s.store.Count(&models.Chunk{}, badgerhold.Where("DocumentID").Eq(documentID))
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for %s: %w", documentID, err)
	}
	return int(count), nil
}
