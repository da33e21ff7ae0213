package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/suneung/mocktrack-backend/internal/config"
)

// ChangeEvent is the payload published after every successful mutation.
// Connected WebSocket clients respond by refetching; the event carries no
// row data on purpose.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangeBroadcaster bumps the dataset version counter and fans change
// events out over Redis pub/sub. A bump invalidates every cached derived
// view because cache keys embed the version.
type ChangeBroadcaster struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewChangeBroadcaster creates a new ChangeBroadcaster.
func NewChangeBroadcaster(rdb *redis.Client, log zerolog.Logger) *ChangeBroadcaster {
	return &ChangeBroadcaster{
		rdb: rdb,
		log: log.With().Str("component", "change_broadcaster").Logger(),
	}
}

// Publish bumps the dataset version and announces the change. Failures
// are logged, not returned: the mutation itself already committed, and a
// missed notification only delays a refetch until the next one.
func (b *ChangeBroadcaster) Publish(ctx context.Context, entity, action string) {
	if err := b.rdb.Incr(ctx, config.CacheKey.DatasetVersionKey()).Err(); err != nil {
		b.log.Error().Err(err).Msg("Failed to bump dataset version")
	}

	raw, _ := json.Marshal(ChangeEvent{
		Entity:    entity,
		Action:    action,
		Timestamp: time.Now().UTC(),
	})
	if err := b.rdb.Publish(ctx, config.CacheKey.ChangesChannel(), raw).Err(); err != nil {
		b.log.Error().Err(err).
			Str("entity", entity).
			Str("action", action).
			Msg("Failed to publish change event")
	}
}

// Version returns the current dataset version, 0 when no mutation has
// happened yet.
func (b *ChangeBroadcaster) Version(ctx context.Context) (int64, error) {
	v, err := b.rdb.Get(ctx, config.CacheKey.DatasetVersionKey()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}
