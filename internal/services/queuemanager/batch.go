package queuemanager

import (
	"container/heap"
	"context"
	"time"

	"github.com/ternarybob/docsi/internal/models"
)

// GetNextBatch returns up to min(maxSize, concurrency - |inProgress|)
// top-priority items whose domain is not currently rate-limited. Items
// belonging to a rate-limited domain are left in the queue untouched,
// preserving their relative order; queue-domain-rate-limited is published
// (when at least one item had to be skipped and the batch came back
// empty) carrying the shortest wait hint observed.
func (m *Manager) GetNextBatch(maxSize int) []models.QueueItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused || m.canceled {
		return nil
	}

	slots := maxSize
	if available := m.cfg.Concurrency - len(m.inProgress); available < slots {
		slots = available
	}
	if slots <= 0 {
		return nil
	}

	var batch []models.QueueItem
	var deferred []*queueEntry
	var shortestWait time.Duration
	var shortestWaitDomain string
	rateLimited := false

	for len(batch) < slots && m.items.Len() > 0 {
		entry := heap.Pop(m.items).(*queueEntry)
		domain := hostOf(entry.url)
		limiter := m.limiterFor(domain)

		reservation := limiter.ReserveN(time.Now(), 1)
		if !reservation.OK() {
			deferred = append(deferred, entry)
			continue
		}
		if wait := reservation.Delay(); wait > 0 {
			reservation.Cancel()
			deferred = append(deferred, entry)
			rateLimited = true
			m.stats.RateLimited++
			if shortestWait == 0 || wait < shortestWait {
				shortestWait = wait
				shortestWaitDomain = domain
			}
			continue
		}

		delete(m.inQueue, entry.url)
		m.inProgress[entry.url] = true
		batch = append(batch, models.QueueItem{
			URL:        entry.url,
			Depth:      entry.depth,
			ParentURL:  entry.parentURL,
			Score:      entry.score,
			AddedAt:    entry.addedAt,
			IsPriority: entry.isPriority,
		})
	}

	for _, entry := range deferred {
		heap.Push(m.items, entry)
	}

	if rateLimited && len(batch) == 0 && m.events != nil {
		m.publishRateLimited(shortestWaitDomain, shortestWait)
	}

	return batch
}

func (m *Manager) publishRateLimited(domain string, wait time.Duration) {
	_ = m.events.Publish(context.Background(), models.Event{
		Type:      models.EventQueueDomainRateLimited,
		JobID:     m.jobID,
		Timestamp: time.Now(),
		Payload:   models.RateLimitedPayload{Domain: domain, WaitHint: wait},
	})
}
