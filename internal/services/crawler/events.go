package crawler

import (
	"context"
	"time"

	"github.com/ternarybob/docsi/internal/models"
)

func (e *Engine) publishPageCrawled(job *models.Job, item models.QueueItem, title string, stored bool) {
	if e.events == nil {
		return
	}
	e.events.Publish(context.Background(), models.Event{
		Type:      models.EventPageCrawled,
		JobID:     job.JobID,
		SourceID:  job.SourceID,
		Timestamp: time.Now(),
		Payload: models.PageCrawledPayload{
			URL:    item.URL,
			Title:  title,
			Depth:  item.Depth,
			Stored: stored,
		},
	})
}

func (e *Engine) publishQueueStats(job *models.Job, stats models.QueueStats) {
	if e.events == nil {
		return
	}
	e.events.Publish(context.Background(), models.Event{
		Type:      models.EventQueueStatsUpdated,
		JobID:     job.JobID,
		SourceID:  job.SourceID,
		Timestamp: time.Now(),
		Payload:   models.QueueStatsPayload{Stats: stats},
	})
}

func (e *Engine) publishSitemapURLsAdded(sourceID string, count int) {
	if e.events == nil {
		return
	}
	e.events.Publish(context.Background(), models.Event{
		Type:      models.EventSitemapURLsAdded,
		SourceID:  sourceID,
		Timestamp: time.Now(),
		Payload:   models.SitemapURLsAddedPayload{Count: count},
	})
}
