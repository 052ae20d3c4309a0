package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

type stubStore struct {
	doc    *models.Document
	chunks []models.Chunk
	err    error
}

func (s *stubStore) SaveDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk) error {
	if s.err != nil {
		return s.err
	}
	s.doc = doc
	s.chunks = chunks
	return nil
}

func (s *stubStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.doc, nil
}

func (s *stubStore) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	return nil, nil
}

func (s *stubStore) CountChunks(ctx context.Context, documentID string) (int, error) {
	return len(s.chunks), nil
}

func testIngestConfig() *common.IngestConfig {
	return &common.IngestConfig{
		ChunkStrategy: "sentence",
		ChunkSize:     1000,
		ChunkOverlap:  200,
	}
}

func TestIngest(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, testIngestConfig(), common.GetLogger())

	doc, err := svc.Ingest(context.Background(), Request{
		Title:    "Notes",
		Content:  "First line here.\nSecond line follows.",
		Metadata: map[string]string{"source": "test"},
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.ID, "doc_"))
	assert.Equal(t, "Notes", doc.Title)
	assert.Equal(t, len("First line here.\nSecond line follows."), doc.CharCount)
	assert.Equal(t, 6, doc.WordCount)
	assert.Equal(t, 2, doc.LineCount)
	assert.Equal(t, "sentence", doc.Chunking.Strategy)
	assert.Equal(t, 1000, doc.Chunking.Size)
	assert.Equal(t, 200, doc.Chunking.Overlap)
	assert.Equal(t, map[string]string{"source": "test"}, doc.Metadata)

	require.NotEmpty(t, store.chunks)
	first := store.chunks[0]
	assert.True(t, strings.HasPrefix(first.ID, "chunk_"))
	assert.Equal(t, doc.ID, first.DocumentID)
	assert.Equal(t, "Notes", first.DocumentTitle)
	assert.Equal(t, 0, first.Index)
	assert.False(t, first.OverlapsPrevious)
}

func TestIngestChunkOffsets(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, testIngestConfig(), common.GetLogger())

	content := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota. Kappa lambda mu."
	_, err := svc.Ingest(context.Background(), Request{
		Title:    "Greek",
		Content:  content,
		Strategy: "sentence",
		Size:     40,
		Overlap:  -1,
	})

	require.NoError(t, err)
	require.Greater(t, len(store.chunks), 1)
	for _, c := range store.chunks {
		assert.Equal(t, c.Content, content[c.Start:c.End])
	}
}

func TestIngestOverridesDefaults(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, testIngestConfig(), common.GetLogger())

	doc, err := svc.Ingest(context.Background(), Request{
		Content:  "one two three four five six seven eight",
		Strategy: "fixed",
		Size:     15,
		Overlap:  5,
	})

	require.NoError(t, err)
	assert.Equal(t, "Untitled", doc.Title)
	assert.Equal(t, "fixed", doc.Chunking.Strategy)
	assert.Equal(t, 15, doc.Chunking.Size)
	assert.Equal(t, 5, doc.Chunking.Overlap)
	assert.Greater(t, len(store.chunks), 1)
	assert.True(t, store.chunks[1].OverlapsPrevious)
}

func TestIngestReplaceKeepsID(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, testIngestConfig(), common.GetLogger())

	doc, err := svc.Ingest(context.Background(), Request{
		ID:      "doc_fixed",
		Title:   "V2",
		Content: "Updated content here.",
	})

	require.NoError(t, err)
	assert.Equal(t, "doc_fixed", doc.ID)
	assert.Equal(t, "doc_fixed", store.chunks[0].DocumentID)
}

func TestIngestEmptyContent(t *testing.T) {
	svc := NewService(&stubStore{}, testIngestConfig(), common.GetLogger())

	_, err := svc.Ingest(context.Background(), Request{Content: "   \n  "})

	assert.Error(t, err)
}

func TestIngestBadStrategy(t *testing.T) {
	svc := NewService(&stubStore{}, testIngestConfig(), common.GetLogger())

	_, err := svc.Ingest(context.Background(), Request{Content: "text", Strategy: "semantic"})

	assert.Error(t, err)
}

func TestIngestStoreError(t *testing.T) {
	svc := NewService(&stubStore{err: errors.New("disk full")}, testIngestConfig(), common.GetLogger())

	_, err := svc.Ingest(context.Background(), Request{Content: "text"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save document")
}
