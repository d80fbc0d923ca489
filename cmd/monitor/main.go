// Command monitor attaches to a running simulator's shared memory and
// prints telemetry events as they happen. It is a thin consumer of the
// reader; all connection and decode logic lives in internal/telemetry.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"simtelem/internal/bus"
	"simtelem/internal/config"
	"simtelem/internal/logging"
	"simtelem/internal/metric"
	"simtelem/internal/notifications"
	"simtelem/internal/telemetry"
)

const logFileName = "simtelem.log"

// Physics arrives at ~100 Hz; log only every Nth record at debug level.
const physicsLogSampling = 100

func main() {
	if err := run(); err != nil {
		slog.Error("run monitor", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config json (defaults apply when empty)")
	physicsMS := flag.Int("physics-interval", 0, "physics poll interval override, ms")
	graphicsMS := flag.Int("graphics-interval", 0, "graphics poll interval override, ms")
	staticMS := flag.Int("static-interval", 0, "static info poll interval override, ms")
	listenFor := flag.Duration("listen-for", 0, "exit after this duration, e.g. 30s (0 = until interrupted)")
	notify := flag.Bool("notify", false, "desktop notifications for connection and session changes")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if *physicsMS > 0 {
		cfg.Telemetry.PhysicsIntervalMS = *physicsMS
	}
	if *graphicsMS > 0 {
		cfg.Telemetry.GraphicsIntervalMS = *graphicsMS
	}
	if *staticMS > 0 {
		cfg.Telemetry.StaticInfoIntervalMS = *staticMS
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, logFileName); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() {
		if closeErr := logMgr.Close(); closeErr != nil {
			slog.Warn("close log manager", "error", closeErr)
		}
	}()
	logger := logMgr.Logger("monitor")

	b := bus.New(logMgr.Logger("bus"))
	defer b.Close()

	registry, metrics := metric.NewRegistry()
	if *metricsAddr != "" {
		startMetricsServer(ctx, logger, *metricsAddr, registry)
	}

	mgr := telemetry.NewManager(logMgr.Logger("telemetry"), b, metrics, telemetry.Config{
		PhysicsInterval:    time.Duration(cfg.Telemetry.PhysicsIntervalMS) * time.Millisecond,
		GraphicsInterval:   time.Duration(cfg.Telemetry.GraphicsIntervalMS) * time.Millisecond,
		StaticInfoInterval: time.Duration(cfg.Telemetry.StaticInfoIntervalMS) * time.Millisecond,
		RetryInterval:      time.Duration(cfg.Telemetry.RetryIntervalMS) * time.Millisecond,
	})

	if *notify || cfg.Notifications.Enabled {
		prefs := cfg.Notifications
		prefs.Enabled = true
		sender := notifications.NewDesktopSender("simtelem", logMgr.Logger("notifications"))
		notifications.NewService(b, sender, prefs, logMgr.Logger("notifications")).Start(ctx)
	}

	subs := subscribeAll(b)
	defer subs.unsubscribe(b)

	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start telemetry manager: %w", err)
	}
	defer mgr.Stop()

	logger.Info("waiting for simulator", "retry_interval_ms", cfg.Telemetry.RetryIntervalMS)

	var deadline <-chan time.Time
	if *listenFor > 0 {
		deadline = time.After(*listenFor)
	}

	physicsSeen := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted")

			return nil
		case <-deadline:
			logger.Info("listen window elapsed", "duration", *listenFor)

			return nil
		case msg := <-subs.conn:
			status := msg.(telemetry.ConnStatus)
			logger.Info("connection status", "state", status.State, "err", status.Err)
		case msg := <-subs.static:
			info := msg.(telemetry.StaticInfo)
			logger.Info("static info",
				"car", info.CarModel, "track", info.Track,
				"player", info.PlayerName, "sessions", info.NumberOfSessions)
		case msg := <-subs.graphics:
			g := msg.(telemetry.Graphics)
			logger.Info("graphics",
				"status", g.Status, "session", g.Session, "lap", g.CompletedLaps,
				"position", g.Position, "current", g.CurrentTime, "in_pit", g.IsInPit)
		case msg := <-subs.physics:
			physicsSeen++
			if physicsSeen%physicsLogSampling == 1 {
				p := msg.(telemetry.Physics)
				logger.Debug("physics",
					"packet", p.PacketID, "speed_kmh", p.SpeedKmh,
					"gear", p.Gear, "rpm", p.RPM)
			}
		case msg := <-subs.runStatus:
			ev := msg.(telemetry.RunStatusChange)
			logger.Info("run status changed", "from", ev.Previous, "to", ev.Current)
		case msg := <-subs.pitStatus:
			ev := msg.(telemetry.PitStatusChange)
			logger.Info("pit status changed", "in_pit", ev.Current)
		case msg := <-subs.session:
			ev := msg.(telemetry.SessionTypeChange)
			logger.Info("session type changed", "from", ev.Previous, "to", ev.Current)
		}
	}
}

type subscriptions struct {
	conn      bus.Subscription
	physics   bus.Subscription
	graphics  bus.Subscription
	static    bus.Subscription
	runStatus bus.Subscription
	pitStatus bus.Subscription
	session   bus.Subscription
}

func subscribeAll(b bus.MessageBus) subscriptions {
	return subscriptions{
		conn:      b.Subscribe(telemetry.TopicConnStatus),
		physics:   b.Subscribe(telemetry.TopicPhysicsUpdated),
		graphics:  b.Subscribe(telemetry.TopicGraphicsUpdated),
		static:    b.Subscribe(telemetry.TopicStaticInfoUpdated),
		runStatus: b.Subscribe(telemetry.TopicRunStatusChanged),
		pitStatus: b.Subscribe(telemetry.TopicPitStatusChanged),
		session:   b.Subscribe(telemetry.TopicSessionTypeChanged),
	}
}

func (s subscriptions) unsubscribe(b bus.MessageBus) {
	b.Unsubscribe(s.conn, telemetry.TopicConnStatus)
	b.Unsubscribe(s.physics, telemetry.TopicPhysicsUpdated)
	b.Unsubscribe(s.graphics, telemetry.TopicGraphicsUpdated)
	b.Unsubscribe(s.static, telemetry.TopicStaticInfoUpdated)
	b.Unsubscribe(s.runStatus, telemetry.TopicRunStatusChanged)
	b.Unsubscribe(s.pitStatus, telemetry.TopicPitStatusChanged)
	b.Unsubscribe(s.session, telemetry.TopicSessionTypeChanged)
}

func startMetricsServer(ctx context.Context, logger *slog.Logger, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
