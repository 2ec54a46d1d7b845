// Package relay consumes chat messages forwarded over Redis pub/sub.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/ingest"
)

// Handler receives decoded relay messages.
type Handler interface {
	Handle(ctx context.Context, msg ingest.Message) (ingest.Result, error)
}

type Notifier interface {
	Publish(event chatguessr.Event)
}

// Relay subscribes to one Redis channel whose payloads are JSON-encoded
// ingest.Message values.
type Relay struct {
	client  *redis.Client
	channel string
	handler Handler
	notify  Notifier
	logger  *slog.Logger
}

func New(client *redis.Client, channel string, h Handler, notify Notifier, logger *slog.Logger) *Relay {
	return &Relay{
		client:  client,
		channel: channel,
		handler: h,
		notify:  notify,
		logger:  logger,
	}
}

// Run consumes messages until ctx is done or the subscription drops.
// Reconnecting is left to the caller.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.channel, err)
	}
	r.logger.Info("relay connected", "channel", r.channel)
	r.notify.Publish(chatguessr.Event{Type: chatguessr.EventRelayConnected})
	defer func() {
		r.logger.Info("relay disconnected", "channel", r.channel)
		r.notify.Publish(chatguessr.Event{Type: chatguessr.EventRelayDisconnected})
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			r.dispatch(ctx, m.Payload)
		}
	}
}

func (r *Relay) dispatch(ctx context.Context, payload string) {
	var msg ingest.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		r.logger.Warn("dropping malformed relay message", "error", err)
		return
	}
	if msg.User.ChannelUserID == "" {
		r.logger.Warn("dropping relay message without user id")
		return
	}
	if _, err := r.handler.Handle(ctx, msg); err != nil {
		r.logger.Error("handling relay message", "user_id", msg.User.ChannelUserID, "error", err)
	}
}
