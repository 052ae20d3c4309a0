package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDoc(id, title string) *models.Document {
	return &models.Document{
		ID:    id,
		Title: title,
		Chunking: models.ChunkingMeta{
			Strategy: "sentence",
			Size:     1000,
			Overlap:  200,
		},
	}
}

func sampleChunks(docID, title string, contents ...string) []models.Chunk {
	chunks := make([]models.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = models.Chunk{
			ID:            common.NewChunkID(),
			DocumentID:    docID,
			DocumentTitle: title,
			Index:         i,
			Content:       c,
		}
	}
	return chunks
}

func TestSaveAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("doc_1", "Go Guide")
	chunks := sampleChunks("doc_1", "Go Guide", "goroutines are lightweight", "channels synchronize goroutines")

	require.NoError(t, store.SaveDocument(ctx, doc, chunks))

	got, err := store.GetDocument(ctx, "doc_1")
	require.NoError(t, err)
	assert.Equal(t, "Go Guide", got.Title)
	assert.Equal(t, 2, got.ChunkCount)
	assert.False(t, got.CreatedAt.IsZero())

	count, err := store.CountChunks(ctx, "doc_1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetDocumentNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDocument(context.Background(), "doc_missing")
	assert.Error(t, err)
}

func TestResaveReplacesChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("doc_1", "Go Guide")
	require.NoError(t, store.SaveDocument(ctx, doc, sampleChunks("doc_1", "Go Guide", "one", "two", "three")))
	require.NoError(t, store.SaveDocument(ctx, doc, sampleChunks("doc_1", "Go Guide", "replacement")))

	count, err := store.CountChunks(ctx, "doc_1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, sampleDoc("doc_1", "First"), nil))
	require.NoError(t, store.SaveDocument(ctx, sampleDoc("doc_2", "Second"), nil))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestSearchRanksByTermOverlap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("doc_1", "Concurrency")
	chunks := sampleChunks("doc_1", "Concurrency",
		"goroutines and channels together enable concurrency",
		"channels pass values between goroutines",
		"maps are not safe for concurrent writes",
	)
	require.NoError(t, store.SaveDocument(ctx, doc, chunks))

	hits, err := store.Search(ctx, "goroutines channels", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// both terms match the first two chunks; the maps chunk matches neither
	assert.InDelta(t, 1.0, hits[0].Score, 0.001)
	assert.InDelta(t, 1.0, hits[1].Score, 0.001)

	hits, err = store.Search(ctx, "goroutines scheduler", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.InDelta(t, 0.5, hits[0].Score, 0.001)
}

func TestSearchLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("doc_1", "Letters")
	require.NoError(t, store.SaveDocument(ctx, doc, sampleChunks("doc_1", "Letters",
		"alpha content", "alpha detail", "alpha more", "alpha again")))

	hits, err := store.Search(ctx, "alpha", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchEmptyQuery(t *testing.T) {
	store := newTestStore(t)

	hits, err := store.Search(context.Background(), "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestQueryTerms(t *testing.T) {
	terms := queryTerms("What are Goroutines, really?")
	assert.Equal(t, []string{"what", "are", "goroutines", "really"}, terms)

	assert.Empty(t, queryTerms("a I"))
}
