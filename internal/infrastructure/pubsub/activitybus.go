package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

const activityChannel = "sessionguard:activity"

// ActivityMessage is the wire form of an activity event shared between instances.
type ActivityMessage struct {
	SessionID  string `json:"session_id"`
	Type       string `json:"type"`
	ObservedAt int64  `json:"observed_at"` // unix milliseconds
	InstanceID string `json:"instance_id"`
}

// ActivityBus delivers activity events to the handlers subscribed for a session.
// Events are dispatched locally right away; with a Redis client they are also
// relayed to the other instances, whose Run loop dispatches them to their own handlers.
type ActivityBus struct {
	client     *redis.Client
	instanceID string
	logger     logger.Interface

	mu       sync.RWMutex
	handlers map[string]map[uint64]func(timeout.ActivityEvent)
	nextID   uint64
}

// NewActivityBus creates a bus. A nil client keeps delivery in-process.
func NewActivityBus(client *redis.Client, logger logger.Interface) *ActivityBus {
	return &ActivityBus{
		client:     client,
		instanceID: uuid.NewString(),
		logger:     logger,
		handlers:   make(map[string]map[uint64]func(timeout.ActivityEvent)),
	}
}

// Subscribe implements timeout.ActivitySource.
func (b *ActivityBus) Subscribe(sessionID string, handler func(timeout.ActivityEvent)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.handlers[sessionID] == nil {
		b.handlers[sessionID] = make(map[uint64]func(timeout.ActivityEvent))
	}
	b.handlers[sessionID][id] = handler
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[sessionID], id)
			if len(b.handlers[sessionID]) == 0 {
				delete(b.handlers, sessionID)
			}
		})
	}
}

// Relays reports whether published events reach other instances.
func (b *ActivityBus) Relays() bool {
	return b.client != nil
}

// Publish dispatches the event locally and relays it to other instances.
func (b *ActivityBus) Publish(ctx context.Context, event timeout.ActivityEvent) error {
	b.dispatch(event)

	if b.client == nil {
		return nil
	}

	data, err := json.Marshal(ActivityMessage{
		SessionID:  event.SessionID,
		Type:       string(event.Type),
		ObservedAt: event.ObservedAt.UnixMilli(),
		InstanceID: b.instanceID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal activity event: %w", err)
	}

	if err := b.client.Publish(ctx, activityChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish activity event: %w", err)
	}
	return nil
}

// Run relays events published by other instances until ctx is done.
func (b *ActivityBus) Run(ctx context.Context) error {
	if b.client == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	sub := b.client.Subscribe(ctx, activityChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Infow("subscribed to activity events",
		"channel", activityChannel,
		"instance_id", b.instanceID,
	)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("activity event subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("activity event channel closed")
				return nil
			}

			var m ActivityMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				b.logger.Warnw("failed to unmarshal activity event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}
			if m.InstanceID == b.instanceID {
				continue
			}

			b.dispatch(timeout.ActivityEvent{
				SessionID:  m.SessionID,
				Type:       timeout.EventType(m.Type),
				ObservedAt: time.UnixMilli(m.ObservedAt),
			})
		}
	}
}

func (b *ActivityBus) dispatch(event timeout.ActivityEvent) {
	b.mu.RLock()
	handlers := make([]func(timeout.ActivityEvent), 0, len(b.handlers[event.SessionID]))
	for _, h := range b.handlers[event.SessionID] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
