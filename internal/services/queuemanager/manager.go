// Package queuemanager implements the Queue Manager (C4): a priority
// queue over discovered URLs with depth-policy gating, concurrency slots,
// and per-domain rate limiting. The heap.Interface priority ordering and
// sync.Mutex-guarded state transitions are grounded on the teacher's
// URLQueue (container/heap + dedup set); per-domain pacing replaces its
// hand-rolled domainLimiter map with golang.org/x/time/rate.Limiter, one
// per host.
package queuemanager

import (
	"container/heap"
	"net/url"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

// Config carries the crawl-scoped parameters the manager enforces.
type Config struct {
	MaxDepth     int
	Concurrency  int
	CrawlDelayMs int
	DepthPolicy  models.DepthPolicy
}

// Manager implements interfaces.QueueManager. One instance is scoped to a
// single crawl job.
type Manager struct {
	logger arbor.ILogger
	events interfaces.EventService
	jobID  string

	cfg Config

	mu         sync.Mutex
	items      *entryHeap
	inQueue    map[string]bool
	inProgress map[string]bool
	visited    map[string]bool
	paused     bool
	canceled   bool

	domainLimiters map[string]*rate.Limiter
	domainCounts   map[string]int // visited URLs per domain, for the adaptive policy

	stats models.QueueStats
}

// New creates a Queue Manager scoped to jobID. events may be nil, in which
// case queue-domain-rate-limited is simply never published.
func New(logger arbor.ILogger, events interfaces.EventService, jobID string, cfg Config) *Manager {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	items := &entryHeap{}
	heap.Init(items)
	return &Manager{
		logger:         logger,
		events:         events,
		jobID:          jobID,
		cfg:            cfg,
		items:          items,
		inQueue:        make(map[string]bool),
		inProgress:     make(map[string]bool),
		visited:        make(map[string]bool),
		domainLimiters: make(map[string]*rate.Limiter),
		domainCounts:   make(map[string]int),
		stats: models.QueueStats{
			DiscoveredByDepth: make(map[int]int),
			VisitedByDepth:    make(map[int]int),
		},
	}
}

// AddURL enforces the active depth policy, rejects duplicates against
// {queue, inProgress, visited}, and otherwise appends url with score 0
// (MIN). AddURL computes no score of its own, so non-priority items it adds
// also get 0 and are ordered among themselves by insertion time.
func (m *Manager) AddURL(rawURL string, depth int, parentURL string, isPriority bool) bool {
	return m.addURL(rawURL, depth, parentURL, isPriority, 0)
}

// AddURLScored is AddURL with an explicit score, for callers that already
// computed one (e.g. via the Sitemap Processor's Score). A priority item's
// score is still forced to 0.
func (m *Manager) AddURLScored(rawURL string, depth int, parentURL string, isPriority bool, score int) bool {
	return m.addURL(rawURL, depth, parentURL, isPriority, score)
}

func (m *Manager) addURL(rawURL string, depth int, parentURL string, isPriority bool, score int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rawURL == "" {
		return false
	}
	if m.inQueue[rawURL] || m.inProgress[rawURL] || m.visited[rawURL] {
		return false
	}
	if !m.allowedByDepthPolicy(rawURL, depth, isPriority) {
		return false
	}

	if isPriority {
		score = 0
	}

	entry := &queueEntry{
		url:        rawURL,
		depth:      depth,
		parentURL:  parentURL,
		score:      score,
		addedAt:    time.Now(),
		isPriority: isPriority,
	}
	heap.Push(m.items, entry)
	m.inQueue[rawURL] = true

	m.stats.DiscoveredByDepth[depth]++
	if depth > m.stats.MaxDepthReached {
		m.stats.MaxDepthReached = depth
	}
	return true
}

// allowedByDepthPolicy applies §4.4's three depth modes: strict always
// enforces maxDepth; flexible allows only priority items past it; adaptive
// allows past-maxDepth items until the URL's domain has accumulated
// AdaptiveDepthThreshold visited URLs.
func (m *Manager) allowedByDepthPolicy(rawURL string, depth int, isPriority bool) bool {
	if depth <= m.cfg.MaxDepth {
		return true
	}

	switch m.cfg.DepthPolicy {
	case models.DepthPolicyFlexible:
		return isPriority
	case models.DepthPolicyAdaptive:
		if isPriority {
			return true
		}
		return m.domainCounts[hostOf(rawURL)] < models.AdaptiveDepthThreshold
	default: // strict
		return false
	}
}

// MarkVisited moves url from inProgress to visited and increments its
// domain's visited-URL count (the adaptive policy's signal).
func (m *Manager) MarkVisited(rawURL string, depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inProgress, rawURL)
	m.visited[rawURL] = true
	m.stats.VisitedByDepth[depth]++
	m.stats.VisitedCount++
	m.domainCounts[hostOf(rawURL)]++
}

// MarkFailed moves url out of inProgress without adding it to visited, so
// a later addUrl call (e.g. a retry from another path) is still free to
// re-enqueue it.
func (m *Manager) MarkFailed(rawURL string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inProgress, rawURL)
}

// Pause suspends dispatch; in-flight requests the engine already issued
// continue uninterrupted.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

// Resume re-enables dispatch.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
}

// Cancel is advisory: it stops further scheduling but never aborts a
// request the engine has already issued.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canceled = true
}

// Stats returns a snapshot of cumulative queue statistics.
func (m *Manager) Stats() models.QueueStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	discovered := make(map[int]int, len(m.stats.DiscoveredByDepth))
	for k, v := range m.stats.DiscoveredByDepth {
		discovered[k] = v
	}
	visited := make(map[int]int, len(m.stats.VisitedByDepth))
	for k, v := range m.stats.VisitedByDepth {
		visited[k] = v
	}
	snapshot := m.stats
	snapshot.DiscoveredByDepth = discovered
	snapshot.VisitedByDepth = visited
	snapshot.QueueLength = m.items.Len()
	snapshot.InProgressCount = len(m.inProgress)
	return snapshot
}

// IsEmpty reports whether there is no queued work and nothing in flight.
func (m *Manager) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Len() == 0 && len(m.inProgress) == 0
}

func (m *Manager) limiterFor(domain string) *rate.Limiter {
	limiter, ok := m.domainLimiters[domain]
	if !ok {
		interval := time.Duration(m.cfg.CrawlDelayMs) * time.Millisecond
		if interval <= 0 {
			limiter = rate.NewLimiter(rate.Inf, 1)
		} else {
			limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
		m.domainLimiters[domain] = limiter
	}
	return limiter
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

var _ interfaces.QueueManager = (*Manager)(nil)
