package telemetry

import (
	"sync"
	"testing"

	"simtelem/internal/bus"
	"simtelem/internal/metric"
)

// recordingBus captures publishes in order across all topics, which a real
// per-topic subscription cannot observe.
type recordingBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	topic string
	msg   any
}

func (b *recordingBus) Publish(topic string, msg any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{topic: topic, msg: msg})
}

func (b *recordingBus) TryPublish(topic string, msg any) {
	b.Publish(topic, msg)
}

func (b *recordingBus) Subscribe(_ string) bus.Subscription {
	return make(bus.Subscription)
}

func (b *recordingBus) Unsubscribe(_ bus.Subscription, _ ...string) {}

func (b *recordingBus) Close() {}

func (b *recordingBus) byTopic(topic string) []any {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []any
	for _, ev := range b.events {
		if ev.topic == topic {
			out = append(out, ev.msg)
		}
	}

	return out
}

func graphicsWith(status Status, inPit bool, session SessionType) Graphics {
	g := sampleGraphics()
	g.Status = status
	g.IsInPit = inPit
	g.Session = session

	return g
}

func TestRunStatusTransitionsFireOnlyOnChange(t *testing.T) {
	b := &recordingBus{}
	d := newDispatcher(b, metric.New())

	for _, status := range []Status{StatusOff, StatusOff, StatusLive, StatusLive, StatusPause} {
		d.Observe(graphicsWith(status, true, SessionUnknown))
	}

	events := b.byTopic(TopicRunStatusChanged)
	if len(events) != 2 {
		t.Fatalf("expected exactly 2 run status events, got %d", len(events))
	}
	first := events[0].(RunStatusChange)
	if first.Previous != StatusOff || first.Current != StatusLive {
		t.Fatalf("unexpected first transition: %+v", first)
	}
	second := events[1].(RunStatusChange)
	if second.Previous != StatusLive || second.Current != StatusPause {
		t.Fatalf("unexpected second transition: %+v", second)
	}

	if updated := b.byTopic(TopicGraphicsUpdated); len(updated) != 5 {
		t.Fatalf("expected graphics-updated for every record, got %d", len(updated))
	}
}

func TestPitFlipEmitsBothTransitions(t *testing.T) {
	b := &recordingBus{}
	d := newDispatcher(b, metric.New())

	for _, inPit := range []bool{true, false, true} {
		d.Observe(graphicsWith(StatusOff, inPit, SessionUnknown))
	}

	events := b.byTopic(TopicPitStatusChanged)
	if len(events) != 2 {
		t.Fatalf("expected exactly 2 pit status events, got %d", len(events))
	}
	if ev := events[0].(PitStatusChange); ev.Current {
		t.Fatalf("first pit event should carry false, got %+v", ev)
	}
	if ev := events[1].(PitStatusChange); !ev.Current {
		t.Fatalf("second pit event should carry true, got %+v", ev)
	}
}

func TestSessionTypeTransition(t *testing.T) {
	b := &recordingBus{}
	d := newDispatcher(b, metric.New())

	d.Observe(graphicsWith(StatusOff, true, SessionUnknown))
	d.Observe(graphicsWith(StatusOff, true, SessionPractice))
	d.Observe(graphicsWith(StatusOff, true, SessionPractice))

	events := b.byTopic(TopicSessionTypeChanged)
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 session event, got %d", len(events))
	}
	ev := events[0].(SessionTypeChange)
	if ev.Previous != SessionUnknown || ev.Current != SessionPractice {
		t.Fatalf("unexpected session transition: %+v", ev)
	}
}

func TestMultiFieldTickEmitsInFixedOrder(t *testing.T) {
	b := &recordingBus{}
	d := newDispatcher(b, metric.New())

	// All three tracked fields differ from the initial defaults.
	d.Observe(graphicsWith(StatusLive, false, SessionRace))

	want := []string{
		TopicRunStatusChanged,
		TopicPitStatusChanged,
		TopicSessionTypeChanged,
		TopicGraphicsUpdated,
	}
	if len(b.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(b.events))
	}
	for i, topic := range want {
		if b.events[i].topic != topic {
			t.Fatalf("event %d: expected topic %s, got %s", i, topic, b.events[i].topic)
		}
	}
}

func TestNoChangeTickEmitsOnlyGraphicsUpdated(t *testing.T) {
	b := &recordingBus{}
	d := newDispatcher(b, metric.New())

	g := graphicsWith(StatusOff, true, SessionUnknown)
	d.Observe(g)
	d.Observe(g)

	if len(b.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(b.events))
	}
	for i, ev := range b.events {
		if ev.topic != TopicGraphicsUpdated {
			t.Fatalf("event %d: expected only graphics-updated, got %s", i, ev.topic)
		}
	}
}
