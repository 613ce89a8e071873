package eventhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-learning-hub/internal/application/query"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-learning-hub/internal/infrastructure/messaging"
)

type recordingCache struct {
	invalidated []string
}

func (c *recordingCache) Get(ctx context.Context, userID string) (*query.StatsDTO, error) {
	return nil, nil
}

func (c *recordingCache) Set(ctx context.Context, userID string, stats *query.StatsDTO) error {
	return nil
}

func (c *recordingCache) Invalidate(ctx context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func TestOnProgressChangedInvalidatesPerUser(t *testing.T) {
	cache := &recordingCache{}
	bus := messaging.NewInMemoryEventBus(messaging.Config{AsyncMode: false})
	defer bus.Close()

	handler := NewOnProgressChangedHandler(cache, nil)
	require.NoError(t, handler.Register(bus))

	require.NoError(t, bus.Publish(shared.NewProgressSavedEvent("e1", "alice", "l1", 5, 5)))
	require.NoError(t, bus.Publish(shared.NewActivityDayRecordedEvent("e2", "alice", "2025-01-03")))
	require.NoError(t, bus.Publish(shared.NewProgressDeletedEvent("e3", "bob", "l2")))

	assert.Equal(t, []string{"alice", "alice", "bob"}, cache.invalidated)
}

func TestOnProgressChangedSkipsEmptyAggregate(t *testing.T) {
	cache := &recordingCache{}
	handler := NewOnProgressChangedHandler(cache, nil)

	err := handler.Handle(shared.NewProgressSavedEvent("e1", "", "l1", 5, 5))
	require.NoError(t, err)
	assert.Empty(t, cache.invalidated)
}
