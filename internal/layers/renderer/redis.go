package renderer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mapview/internal/layers/models"
	"mapview/pkg/requestcontext"
)

// ChannelPrefix is prepended to the session id to form the pub/sub channel a
// renderer subscribes to.
const ChannelPrefix = "mapview:render:"

// Publisher is the subset of the go-redis client the renderer needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Message is the JSON payload published for each notification.
type Message struct {
	SessionID uuid.UUID `json:"session_id"`
	models.Notification
}

// RedisRenderer publishes notifications to the viewer session's channel,
// taken from the request context.
type RedisRenderer struct {
	client Publisher
}

func NewRedisRenderer(client Publisher) *RedisRenderer {
	return &RedisRenderer{client: client}
}

// Channel returns the pub/sub channel for a session.
func Channel(sessionID uuid.UUID) string {
	return ChannelPrefix + sessionID.String()
}

func (r *RedisRenderer) SetVisibility(ctx context.Context, layerID string, visible bool) error {
	return r.publish(ctx, models.VisibilityChanged(layerID, visible))
}

func (r *RedisRenderer) SetStyle(ctx context.Context, layerID string, style models.Style) error {
	return r.publish(ctx, models.StyleChanged(layerID, style))
}

func (r *RedisRenderer) publish(ctx context.Context, n models.Notification) error {
	sessionID := requestcontext.SessionID(ctx)
	payload, err := json.Marshal(Message{SessionID: sessionID, Notification: n})
	if err != nil {
		return fmt.Errorf("encode %s notification: %w", n.Kind, err)
	}
	if err := r.client.Publish(ctx, Channel(sessionID), payload).Err(); err != nil {
		return fmt.Errorf("publish %s notification for %s: %w", n.Kind, n.LayerID, err)
	}
	return nil
}
