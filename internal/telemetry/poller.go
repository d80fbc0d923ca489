package telemetry

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// poller fires onTick on a recurring schedule. One goroutine per poller, so
// a region's ticks are serialized and never queue behind each other: if a
// tick overruns the interval, the next one is simply scheduled after it
// finishes.
type poller struct {
	name     string
	logger   *slog.Logger
	interval atomic.Int64 // nanoseconds
	onTick   func()

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

func newPoller(name string, logger *slog.Logger, interval time.Duration, onTick func()) *poller {
	p := &poller{
		name:   name,
		logger: logger,
		onTick: onTick,
	}
	p.interval.Store(int64(interval))

	return p
}

func (p *poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.running = true
	go p.run(p.stopCh, p.doneCh)
	p.logger.Debug("poller started", "region", p.name, "interval", p.Interval())
}

// Stop halts the schedule and waits for an in-flight tick to finish. After
// Stop returns, onTick will not be invoked again until the next Start.
func (p *poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()

		return
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)
	<-doneCh
	p.logger.Debug("poller stopped", "region", p.name)
}

// SetInterval changes the period. It applies when the next tick is
// scheduled, not to an in-flight wait.
func (p *poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.interval.Store(int64(d))
}

func (p *poller) Interval() time.Duration {
	return time.Duration(p.interval.Load())
}

func (p *poller) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(p.Interval())
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-timer.C:
			p.onTick()
			timer.Reset(p.Interval())
		}
	}
}
