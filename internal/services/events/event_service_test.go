package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

func newTestService() interfaces.EventService {
	return NewService(arbor.NewLogger())
}

func TestPublishSync_DeliversToAllSubscribers(t *testing.T) {
	svc := newTestService()
	defer svc.Close()

	var calls int
	handler := func(ctx context.Context, e models.Event) error {
		calls++
		return nil
	}

	require.NoError(t, svc.Subscribe(models.EventPageCrawled, handler))
	require.NoError(t, svc.Subscribe(models.EventPageCrawled, handler))

	err := svc.PublishSync(context.Background(), models.Event{Type: models.EventPageCrawled})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestUnsubscribe_RemovesHandler(t *testing.T) {
	svc := newTestService()
	defer svc.Close()

	var calls int
	handler := func(ctx context.Context, e models.Event) error {
		calls++
		return nil
	}

	require.NoError(t, svc.Subscribe(models.EventJobCreated, handler))
	require.NoError(t, svc.Unsubscribe(models.EventJobCreated, handler))

	require.NoError(t, svc.PublishSync(context.Background(), models.Event{Type: models.EventJobCreated}))
	assert.Equal(t, 0, calls)
}

func TestUnsubscribe_UnknownHandlerErrors(t *testing.T) {
	svc := newTestService()
	defer svc.Close()

	handler := func(ctx context.Context, e models.Event) error { return nil }
	err := svc.Unsubscribe(models.EventJobCreated, handler)
	assert.Error(t, err)
}

func TestPublish_IsAsynchronous(t *testing.T) {
	svc := newTestService()
	defer svc.Close()

	done := make(chan struct{})
	require.NoError(t, svc.Subscribe(models.EventJobStarted, func(ctx context.Context, e models.Event) error {
		close(done)
		return nil
	}))

	require.NoError(t, svc.Publish(context.Background(), models.Event{Type: models.EventJobStarted}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}
