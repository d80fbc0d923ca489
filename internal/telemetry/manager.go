package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"simtelem/internal/bus"
	"simtelem/internal/metric"
	"simtelem/internal/shm"
)

// Mapping is the slice of a shared-memory region handle the manager needs.
// shm.Region satisfies it; tests substitute in-memory fakes.
type Mapping interface {
	Snapshot(n int) ([]byte, error)
	Close() error
}

// OpenFunc attaches to a named region of the given size.
type OpenFunc func(name string, size int) (Mapping, error)

func openSharedMemory(name string, size int) (Mapping, error) {
	return shm.Open(name, size)
}

// Config carries the poll cadences. Zero fields fall back to defaults.
type Config struct {
	PhysicsInterval    time.Duration
	GraphicsInterval   time.Duration
	StaticInfoInterval time.Duration
	RetryInterval      time.Duration
}

func DefaultConfig() Config {
	return Config{
		PhysicsInterval:    10 * time.Millisecond,
		GraphicsInterval:   time.Second,
		StaticInfoInterval: time.Second,
		RetryInterval:      2 * time.Second,
	}
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.PhysicsInterval <= 0 {
		c.PhysicsInterval = def.PhysicsInterval
	}
	if c.GraphicsInterval <= 0 {
		c.GraphicsInterval = def.GraphicsInterval
	}
	if c.StaticInfoInterval <= 0 {
		c.StaticInfoInterval = def.StaticInfoInterval
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = def.RetryInterval
	}
}

// Manager owns the three region handles and the connection state machine.
// It is Connected exactly when all three handles are open; a connect is
// all-or-nothing. While disconnected it retries at a fixed cadence forever,
// because the simulator is routinely started after the reader.
type Manager struct {
	logger        *slog.Logger
	bus           bus.MessageBus
	metrics       *metric.Metrics
	open          OpenFunc
	retryInterval time.Duration

	mu       sync.RWMutex
	state    ConnectionState
	static   Mapping
	graphics Mapping
	physics  Mapping
	cancel   context.CancelFunc
	started  bool
	wg       sync.WaitGroup

	staticPoller   *poller
	graphicsPoller *poller
	physicsPoller  *poller
	dispatcher     *dispatcher

	// Per-region tick guards. A poller already serializes its own ticks;
	// the guards additionally cover the forced poll on connect, which runs
	// on the connector goroutine. TryLock drops the late tick instead of
	// queuing it.
	staticGuard   sync.Mutex
	graphicsGuard sync.Mutex
	physicsGuard  sync.Mutex
}

func NewManager(logger *slog.Logger, b bus.MessageBus, m *metric.Metrics, cfg Config) *Manager {
	if m == nil {
		m = metric.New()
	}
	cfg.fillDefaults()

	mgr := &Manager{
		logger:        logger,
		bus:           b,
		metrics:       m,
		open:          openSharedMemory,
		retryInterval: cfg.RetryInterval,
		state:         ConnectionStateDisconnected,
		dispatcher:    newDispatcher(b, m),
	}
	mgr.staticPoller = newPoller("static", logger, cfg.StaticInfoInterval, mgr.pollStaticInfo)
	mgr.graphicsPoller = newPoller("graphics", logger, cfg.GraphicsInterval, mgr.pollGraphics)
	mgr.physicsPoller = newPoller("physics", logger, cfg.PhysicsInterval, mgr.pollPhysics)

	return mgr
}

// Start launches the connector: an immediate connect attempt, then retries
// at the retry cadence until connected or stopped. Returns an error if the
// manager is already running.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()

		return errors.New("telemetry: manager already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.started = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.runConnector(runCtx)

	return nil
}

// Stop tears everything down. When it returns, no callback will fire again:
// the connector has exited, every poller has drained its in-flight tick,
// and the handles are closed.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()

		return
	}
	cancel := m.cancel
	m.cancel = nil
	m.started = false
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	m.physicsPoller.Stop()
	m.graphicsPoller.Stop()
	m.staticPoller.Stop()

	m.mu.Lock()
	m.closeHandlesLocked()
	m.mu.Unlock()

	m.setState(ConnectionStateDisconnected, nil)
}

func (m *Manager) IsConnected() bool {
	return m.State() == ConnectionStateConnected
}

func (m *Manager) State() ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

func (m *Manager) runConnector(ctx context.Context) {
	defer m.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}
		if m.connect() {
			return
		}
		if !sleepWithContext(ctx, m.retryInterval) {
			return
		}
	}
}

// connect runs one full Connecting sequence. Open order and poller start
// order are fixed: static info, graphics, physics. Any open failure closes
// the partial handles and reports false, leaving the retry loop to try
// again.
func (m *Manager) connect() bool {
	m.metrics.ConnectAttempts.Inc()
	m.setState(ConnectionStateConnecting, nil)

	type regionSpec struct {
		name string
		size int
		dst  *Mapping
	}
	var static, graphics, physics Mapping
	specs := []regionSpec{
		{staticRegionName, StaticInfoSize, &static},
		{graphicsRegionName, GraphicsSize, &graphics},
		{physicsRegionName, PhysicsSize, &physics},
	}

	for _, spec := range specs {
		h, err := m.open(spec.name, spec.size)
		if err != nil {
			for _, opened := range []Mapping{static, graphics, physics} {
				if opened != nil {
					_ = opened.Close()
				}
			}
			if errors.Is(err, shm.ErrNotPublished) {
				m.logger.Debug("region not published yet", "region", spec.name)
			} else {
				m.logger.Warn("region open failed", "region", spec.name, "error", err)
			}
			m.setState(ConnectionStateDisconnected, err)

			return false
		}
		*spec.dst = h
	}

	m.mu.Lock()
	m.static = static
	m.graphics = graphics
	m.physics = physics
	m.mu.Unlock()

	m.setState(ConnectionStateConnected, nil)
	m.logger.Info("connected to simulator shared memory")

	m.staticPoller.Start()
	m.graphicsPoller.Start()
	m.physicsPoller.Start()

	// Forced first poll so subscribers see records without waiting out a
	// full interval.
	m.pollStaticInfo()
	m.pollGraphics()
	m.pollPhysics()

	return true
}

func (m *Manager) closeHandlesLocked() {
	for _, h := range []Mapping{m.physics, m.graphics, m.static} {
		if h != nil {
			_ = h.Close()
		}
	}
	m.physics, m.graphics, m.static = nil, nil, nil
}

func (m *Manager) setState(state ConnectionState, err error) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	switch state {
	case ConnectionStateConnecting:
		m.metrics.ConnectionState.Set(1)
	case ConnectionStateConnected:
		m.metrics.ConnectionState.Set(2)
	default:
		m.metrics.ConnectionState.Set(0)
	}

	status := ConnStatus{State: state, Timestamp: time.Now()}
	if err != nil {
		status.Err = err.Error()
	}
	m.bus.Publish(TopicConnStatus, status)
}

// ReadPhysics takes a snapshot of the physics region and decodes it. Fails
// with ErrNotConnected unless the manager is Connected.
func (m *Manager) ReadPhysics() (Physics, error) {
	raw, err := m.snapshot(func() Mapping { return m.physics }, PhysicsSize)
	if err != nil {
		return Physics{}, err
	}

	return DecodePhysics(raw)
}

func (m *Manager) ReadGraphics() (Graphics, error) {
	raw, err := m.snapshot(func() Mapping { return m.graphics }, GraphicsSize)
	if err != nil {
		return Graphics{}, err
	}

	return DecodeGraphics(raw)
}

func (m *Manager) ReadStaticInfo() (StaticInfo, error) {
	raw, err := m.snapshot(func() Mapping { return m.static }, StaticInfoSize)
	if err != nil {
		return StaticInfo{}, err
	}

	return DecodeStaticInfo(raw)
}

func (m *Manager) snapshot(handle func() Mapping, size int) ([]byte, error) {
	m.mu.RLock()
	state := m.state
	h := handle()
	m.mu.RUnlock()

	if state != ConnectionStateConnected || h == nil {
		return nil, ErrNotConnected
	}

	raw, err := h.Snapshot(size)
	if err != nil {
		if errors.Is(err, shm.ErrClosed) {
			return nil, ErrNotConnected
		}

		return nil, fmt.Errorf("snapshot: %w", err)
	}

	return raw, nil
}

func (m *Manager) pollPhysics() {
	if !m.physicsGuard.TryLock() {
		return
	}
	defer m.physicsGuard.Unlock()

	rec, err := m.ReadPhysics()
	if err != nil {
		m.handleTickError("physics", err)

		return
	}
	m.metrics.Ticks.WithLabelValues("physics").Inc()
	m.bus.TryPublish(TopicPhysicsUpdated, rec)
}

func (m *Manager) pollGraphics() {
	if !m.graphicsGuard.TryLock() {
		return
	}
	defer m.graphicsGuard.Unlock()

	rec, err := m.ReadGraphics()
	if err != nil {
		m.handleTickError("graphics", err)

		return
	}
	m.metrics.Ticks.WithLabelValues("graphics").Inc()
	m.dispatcher.Observe(rec)
}

func (m *Manager) pollStaticInfo() {
	if !m.staticGuard.TryLock() {
		return
	}
	defer m.staticGuard.Unlock()

	rec, err := m.ReadStaticInfo()
	if err != nil {
		m.handleTickError("static", err)

		return
	}
	m.metrics.Ticks.WithLabelValues("static").Inc()
	m.bus.TryPublish(TopicStaticInfoUpdated, rec)
}

// Ticks that race a disconnect are dropped silently; a layout mismatch is a
// configuration fault and is loud.
func (m *Manager) handleTickError(region string, err error) {
	if errors.Is(err, ErrNotConnected) {
		return
	}
	m.metrics.ReadErrors.WithLabelValues(region).Inc()
	if errors.Is(err, ErrLayoutMismatch) {
		m.logger.Error("record layout mismatch, check publisher version", "region", region, "error", err)

		return
	}
	m.logger.Warn("poll failed", "region", region, "error", err)
}

func (m *Manager) PhysicsInterval() time.Duration { return m.physicsPoller.Interval() }

func (m *Manager) GraphicsInterval() time.Duration { return m.graphicsPoller.Interval() }

func (m *Manager) StaticInfoInterval() time.Duration { return m.staticPoller.Interval() }

func (m *Manager) SetPhysicsInterval(d time.Duration) { m.physicsPoller.SetInterval(d) }

func (m *Manager) SetGraphicsInterval(d time.Duration) { m.graphicsPoller.SetInterval(d) }

func (m *Manager) SetStaticInfoInterval(d time.Duration) { m.staticPoller.SetInterval(d) }

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
