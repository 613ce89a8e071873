// Package eventhandler contains domain event subscribers. They react to
// state changes and run side effects such as dropping stale read-side
// cache entries.
package eventhandler

import (
	"context"
	"time"

	"github.com/lingua-hub/lingua-learning-hub/internal/application/query"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON PROGRESS CHANGED HANDLER
// Every write that can move a user's aggregate stats (a saved attempt, a
// reset record, a new activity day) invalidates that user's cached
// summary. The next stats read recomputes and repopulates the cache.
// ══════════════════════════════════════════════════════════════════════════════

// invalidateTimeout bounds the cache call so a slow Redis cannot stall
// the event bus worker.
const invalidateTimeout = 2 * time.Second

// OnProgressChangedHandler drops a user's cached stats summary when
// their progress or activity changes.
type OnProgressChangedHandler struct {
	cache query.SummaryCache
	log   *logger.Logger
}

// NewOnProgressChangedHandler creates a new OnProgressChangedHandler.
func NewOnProgressChangedHandler(cache query.SummaryCache, log *logger.Logger) *OnProgressChangedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnProgressChangedHandler{
		cache: cache,
		log:   log.With(logger.Component("stats_invalidator")),
	}
}

// Register subscribes the handler to every event type that affects a
// user's aggregate stats.
func (h *OnProgressChangedHandler) Register(bus shared.EventSubscriber) error {
	for _, eventType := range []shared.EventType{
		shared.EventProgressSaved,
		shared.EventProgressDeleted,
		shared.EventActivityDayRecorded,
	} {
		if err := bus.Subscribe(eventType, h.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle implements shared.EventHandler. The event's aggregate is the
// user whose state changed.
func (h *OnProgressChangedHandler) Handle(event shared.Event) error {
	userID := event.AggregateID()
	if userID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	if err := h.cache.Invalidate(ctx, userID); err != nil {
		h.log.Warn("stats invalidation failed",
			logger.UserID(userID),
			logger.String("event_type", string(event.EventType())),
			logger.Err(err),
		)
		return err
	}

	h.log.Debug("stats cache invalidated",
		logger.UserID(userID),
		logger.String("event_type", string(event.EventType())),
	)
	return nil
}
