package sourceregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/models"
	"github.com/ternarybob/docsi/internal/storage/docstore"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()
	storage := docstore.New(arbor.NewLogger(), dir)
	return New(arbor.NewLogger(), dir, storage)
}

func sampleSource(name, baseURL string) *models.DocumentSource {
	return &models.DocumentSource{
		Name:    name,
		BaseURL: baseURL,
		Policy:  models.CrawlPolicy{MaxDepth: 5, MaxPages: 100},
	}
}

func TestAdd_AssignsIDAndPersists(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	source := sampleSource("docs", "https://example.test/docs")

	require.NoError(t, r.Add(ctx, source))
	assert.NotEmpty(t, source.ID)

	got, err := r.FindByName(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, source.ID, got.ID)
}

func TestAdd_RejectsDuplicateName(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	require.NoError(t, r.Add(ctx, sampleSource("docs", "https://example.test/docs")))

	err := r.Add(ctx, sampleSource("docs", "https://example.test/other"))
	assert.Error(t, err)
}

func TestAdd_RejectsInvalidSource(t *testing.T) {
	r := newRegistry(t)
	err := r.Add(context.Background(), &models.DocumentSource{Name: "bad", BaseURL: "not-a-url"})
	assert.Error(t, err)
}

func TestList_ReturnsAllAddedSources(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	require.NoError(t, r.Add(ctx, sampleSource("a", "https://a.test")))
	require.NoError(t, r.Add(ctx, sampleSource("b", "https://b.test")))

	sources, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 2)
}

func TestUpdate_PreservesAddedAt(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	source := sampleSource("docs", "https://example.test/docs")
	require.NoError(t, r.Add(ctx, source))
	originalAddedAt := source.AddedAt

	source.Policy.MaxDepth = 3
	require.NoError(t, r.Update(ctx, source))

	got, err := r.FindByID(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, originalAddedAt, got.AddedAt)
	assert.Equal(t, 3, got.Policy.MaxDepth)
}

func TestUpdate_RejectsUnknownID(t *testing.T) {
	r := newRegistry(t)
	source := sampleSource("docs", "https://example.test/docs")
	source.ID = "missing"
	assert.Error(t, r.Update(context.Background(), source))
}

func TestRemove_DeletesRecordAndCascadesStorage(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	source := sampleSource("docs", "https://example.test/docs")
	require.NoError(t, r.Add(ctx, source))

	removed, err := r.Remove(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, source.ID, removed.ID)

	_, err = r.FindByName(ctx, "docs")
	assert.Error(t, err)
}

func TestRemove_UnknownNameReturnsError(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Remove(context.Background(), "missing")
	assert.Error(t, err)
}

func TestFindByID_UnknownReturnsError(t *testing.T) {
	r := newRegistry(t)
	_, err := r.FindByID(context.Background(), "missing")
	assert.Error(t, err)
}

func TestCustomLinks_ReturnsEmptyWhenConfigAbsent(t *testing.T) {
	r := newRegistry(t)
	links, err := r.CustomLinks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, links)
}
