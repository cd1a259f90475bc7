package queuemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/models"
)

func newManager(cfg Config) *Manager {
	return New(arbor.NewLogger(), nil, "job-1", cfg)
}

func TestAddURL_RejectsDuplicate(t *testing.T) {
	m := newManager(Config{MaxDepth: 3, Concurrency: 2})
	require.True(t, m.AddURL("https://example.test/a", 1, "", false))
	assert.False(t, m.AddURL("https://example.test/a", 1, "", false))
}

func TestAddURL_StrictRejectsBeyondMaxDepth(t *testing.T) {
	m := newManager(Config{MaxDepth: 1, Concurrency: 2, DepthPolicy: models.DepthPolicyStrict})
	assert.False(t, m.AddURL("https://example.test/a", 2, "", false))
}

func TestAddURL_FlexibleAllowsPriorityBeyondMaxDepth(t *testing.T) {
	m := newManager(Config{MaxDepth: 1, Concurrency: 2, DepthPolicy: models.DepthPolicyFlexible})
	assert.False(t, m.AddURL("https://example.test/a", 2, "", false))
	assert.True(t, m.AddURL("https://example.test/b", 2, "", true))
}

func TestAddURL_AdaptiveAllowsUntilThreshold(t *testing.T) {
	m := newManager(Config{MaxDepth: 1, Concurrency: 5, DepthPolicy: models.DepthPolicyAdaptive})
	assert.True(t, m.AddURL("https://example.test/early", 5, "", false))
	for i := 0; i < models.AdaptiveDepthThreshold; i++ {
		m.MarkVisited("https://example.test/seed", 0)
	}
	assert.False(t, m.AddURL("https://example.test/deep", 5, "", false))
}

func TestGetNextBatch_RespectsConcurrencyAndPriorityOrder(t *testing.T) {
	m := newManager(Config{MaxDepth: 5, Concurrency: 1})
	m.AddURL("https://example.test/low", 1, "", false)
	m.AddURL("https://example.test/priority", 1, "", true)

	batch := m.GetNextBatch(5)
	require.Len(t, batch, 1)
	assert.Equal(t, "https://example.test/priority", batch[0].URL)
}

func TestGetNextBatch_SkipsRateLimitedDomainLeavingItemQueued(t *testing.T) {
	m := newManager(Config{MaxDepth: 5, Concurrency: 5, CrawlDelayMs: 50})
	m.AddURL("https://example.test/a", 1, "", false)

	first := m.GetNextBatch(5)
	require.Len(t, first, 1)
	m.MarkVisited(first[0].URL, 1)

	m.AddURL("https://example.test/b", 1, "", false)
	second := m.GetNextBatch(5)
	assert.Empty(t, second)
	assert.True(t, m.items.Len() > 0 || !m.IsEmpty())
}

func TestMarkFailed_AllowsReAdd(t *testing.T) {
	m := newManager(Config{MaxDepth: 5, Concurrency: 5})
	m.AddURL("https://example.test/a", 1, "", false)
	batch := m.GetNextBatch(5)
	require.Len(t, batch, 1)

	m.MarkFailed(batch[0].URL, 1)
	assert.True(t, m.AddURL(batch[0].URL, 1, "", false))
}

func TestPauseStopsDispatch(t *testing.T) {
	m := newManager(Config{MaxDepth: 5, Concurrency: 5})
	m.AddURL("https://example.test/a", 1, "", false)
	m.Pause()
	assert.Empty(t, m.GetNextBatch(5))
	m.Resume()
	assert.Len(t, m.GetNextBatch(5), 1)
}

func TestIsEmpty(t *testing.T) {
	m := newManager(Config{MaxDepth: 5, Concurrency: 5})
	assert.True(t, m.IsEmpty())
	m.AddURL("https://example.test/a", 1, "", false)
	assert.False(t, m.IsEmpty())
}
