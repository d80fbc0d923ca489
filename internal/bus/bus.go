// Package bus is the in-process fan-out point for telemetry events. One
// subscription channel per subscriber per topic; per-topic ordering follows
// publish order.
package bus

import (
	"log/slog"
	"reflect"

	"github.com/cskr/pubsub"
)

// Per-subscriber channel capacity. Slow subscribers buffer up to this many
// events before Publish blocks (or TryPublish drops).
const subscriberBuffer = 64

type Subscription chan any

type MessageBus interface {
	Publish(topic string, msg any)
	TryPublish(topic string, msg any)
	Subscribe(topic string) Subscription
	Unsubscribe(ch Subscription, topics ...string)
	Close()
}

type PubSubBus struct {
	ps     *pubsub.PubSub
	logger *slog.Logger
}

func New(logger *slog.Logger) *PubSubBus {
	return &PubSubBus{
		ps:     pubsub.New(subscriberBuffer),
		logger: logger,
	}
}

// Publish delivers msg to every subscriber of topic, blocking on full
// subscriber buffers. Use for events that must not be lost.
func (b *PubSubBus) Publish(topic string, msg any) {
	b.logger.Debug("publish", "topic", topic, "payload_type", payloadType(msg))
	b.ps.Pub(msg, topic)
}

// TryPublish delivers msg to subscribers that can take it immediately and
// drops it for the rest. Use for high-rate live data where the next sample
// supersedes this one anyway.
func (b *PubSubBus) TryPublish(topic string, msg any) {
	b.ps.TryPub(msg, topic)
}

func (b *PubSubBus) Subscribe(topic string) Subscription {
	ch := b.ps.Sub(topic)
	b.logger.Debug("subscribe", "topic", topic)

	return ch
}

func (b *PubSubBus) Unsubscribe(ch Subscription, topics ...string) {
	if len(topics) == 0 {
		b.ps.Unsub(ch)

		return
	}
	b.ps.Unsub(ch, topics...)
}

func (b *PubSubBus) Close() {
	b.ps.Shutdown()
}

func payloadType(v any) string {
	if v == nil {
		return "<nil>"
	}

	return reflect.TypeOf(v).String()
}
