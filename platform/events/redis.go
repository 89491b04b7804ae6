package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"mapview_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Decoder turns a published payload back into a typed event.
type Decoder func(payload []byte) (Event, error)

// envelope is the wire format on the Redis channel.
type envelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBus publishes events on Redis pub/sub so that every instance
// subscribed to the channel prefix receives them. Incoming events are
// decoded with a registered Decoder and dispatched to local handlers.
type RedisBus struct {
	client *redis.Client
	prefix string
	local  *InMemoryBus
	log    *logger.Logger

	mu       sync.RWMutex
	decoders map[string]Decoder

	readyOnce sync.Once
	ready     chan struct{}
}

// NewRedisBus creates a bus on top of an existing Redis client.
func NewRedisBus(client *redis.Client, prefix string, log *logger.Logger) *RedisBus {
	return &RedisBus{
		client:   client,
		prefix:   prefix,
		local:    NewInMemoryBus(log),
		log:      log,
		decoders: make(map[string]Decoder),
		ready:    make(chan struct{}),
	}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// RegisterDecoder tells the bus how to rebuild events named eventName.
// Events without a decoder are dropped on receipt.
func (b *RedisBus) RegisterDecoder(eventName string, d Decoder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.decoders[eventName] = d
}

// Subscribe registers a local handler.
func (b *RedisBus) Subscribe(eventName string, handler Handler) {
	b.local.Subscribe(eventName, handler)
}

// Publish sends the event to Redis. Failures are logged.
func (b *RedisBus) Publish(ctx context.Context, event Event) {
	if err := b.PublishSync(ctx, event); err != nil {
		b.log.Error("redis publish failed", "event", event.EventName(), "error", err)
	}
}

// PublishSync sends the event to Redis and returns once Redis accepted it.
// Local delivery happens when the message comes back through Run.
func (b *RedisBus) PublishSync(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}
	body, err := json.Marshal(envelope{Name: event.EventName(), Payload: payload})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.prefix+event.EventName(), body).Err()
}

// Ready is closed once Run has an active subscription.
func (b *RedisBus) Ready() <-chan struct{} {
	return b.ready
}

// Run subscribes to every channel under the prefix and dispatches messages
// until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context) error {
	sub := b.client.PSubscribe(ctx, b.prefix+"*")
	defer func() {
		_ = sub.Close()
	}()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.readyOnce.Do(func() { close(b.ready) })

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch(ctx, msg)
		}
	}
}

func (b *RedisBus) dispatch(ctx context.Context, msg *redis.Message) {
	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		b.log.Warn("redis event envelope invalid", "channel", msg.Channel, "error", err)
		return
	}
	if env.Name == "" {
		env.Name = strings.TrimPrefix(msg.Channel, b.prefix)
	}

	b.mu.RLock()
	decode, ok := b.decoders[env.Name]
	b.mu.RUnlock()
	if !ok {
		b.log.Debug("redis event without decoder", "event", env.Name)
		return
	}

	event, err := decode(env.Payload)
	if err != nil {
		b.log.Warn("redis event decode failed", "event", env.Name, "error", err)
		return
	}
	if err := b.local.PublishSync(ctx, event); err != nil {
		b.log.Error("event handler failed", "event", env.Name, "error", err)
	}
}

var _ Bus = (*RedisBus)(nil)
