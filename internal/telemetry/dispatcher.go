package telemetry

import (
	"simtelem/internal/bus"
	"simtelem/internal/metric"
)

// dispatcher compares each decoded graphics record against the last
// observed values of the three tracked fields and emits one transition
// event per changed field. It runs only inside the graphics tick, which the
// manager serializes, so it keeps no lock of its own.
type dispatcher struct {
	bus     bus.MessageBus
	metrics *metric.Metrics

	prevStatus  Status
	prevInPit   bool
	prevSession SessionType
}

// Initial "last known" values: run status off, car in pit, session unknown.
// A simulator that is already live therefore produces transitions on the
// very first record.
func newDispatcher(b bus.MessageBus, m *metric.Metrics) *dispatcher {
	return &dispatcher{
		bus:         b,
		metrics:     m,
		prevStatus:  StatusOff,
		prevInPit:   true,
		prevSession: SessionUnknown,
	}
}

// Observe handles one decoded graphics record. The three comparisons are
// independent; emission order on a tick with several changes is fixed: run
// status, pit status, session type. The unconditional graphics-updated
// event always comes last, after any transitions it caused.
func (d *dispatcher) Observe(g Graphics) {
	if g.Status != d.prevStatus {
		ev := RunStatusChange{Previous: d.prevStatus, Current: g.Status}
		d.prevStatus = g.Status
		d.metrics.Transitions.WithLabelValues("run_status").Inc()
		d.bus.Publish(TopicRunStatusChanged, ev)
	}
	if g.IsInPit != d.prevInPit {
		ev := PitStatusChange{Previous: d.prevInPit, Current: g.IsInPit}
		d.prevInPit = g.IsInPit
		d.metrics.Transitions.WithLabelValues("pit_status").Inc()
		d.bus.Publish(TopicPitStatusChanged, ev)
	}
	if g.Session != d.prevSession {
		ev := SessionTypeChange{Previous: d.prevSession, Current: g.Session}
		d.prevSession = g.Session
		d.metrics.Transitions.WithLabelValues("session_type").Inc()
		d.bus.Publish(TopicSessionTypeChanged, ev)
	}

	d.bus.TryPublish(TopicGraphicsUpdated, g)
}
