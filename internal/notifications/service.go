package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"simtelem/internal/bus"
	"simtelem/internal/config"
	"simtelem/internal/telemetry"
)

// Service listens to telemetry bus events and raises user-facing
// notifications according to the configured preferences.
type Service struct {
	bus    bus.MessageBus
	sender Sender
	prefs  config.NotificationConfig
	logger *slog.Logger

	mu            sync.Mutex
	lastConnState telemetry.ConnectionState
	lastStateSet  bool
}

func NewService(b bus.MessageBus, sender Sender, prefs config.NotificationConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default().With("component", "notifications")
	}

	return &Service{
		bus:    b,
		sender: sender,
		prefs:  prefs,
		logger: logger,
	}
}

func (s *Service) Start(ctx context.Context) {
	if s == nil || s.bus == nil || s.sender == nil || !s.prefs.Enabled {
		return
	}

	connSub := s.bus.Subscribe(telemetry.TopicConnStatus)
	statusSub := s.bus.Subscribe(telemetry.TopicRunStatusChanged)

	go func() {
		defer s.bus.Unsubscribe(connSub, telemetry.TopicConnStatus)
		defer s.bus.Unsubscribe(statusSub, telemetry.TopicRunStatusChanged)

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-connSub:
				if !ok {
					return
				}
				status, ok := raw.(telemetry.ConnStatus)
				if !ok {
					continue
				}
				s.handleConnStatus(status)
			case raw, ok := <-statusSub:
				if !ok {
					return
				}
				change, ok := raw.(telemetry.RunStatusChange)
				if !ok {
					continue
				}
				s.handleRunStatus(change)
			}
		}
	}()
}

// handleConnStatus notifies on transitions into and out of Connected only;
// the retry loop republishes Connecting/Disconnected every cycle and that
// churn is not worth a popup.
func (s *Service) handleConnStatus(status telemetry.ConnStatus) {
	if !s.prefs.OnConnectionStatus {
		return
	}

	s.mu.Lock()
	wasConnected := s.lastStateSet && s.lastConnState == telemetry.ConnectionStateConnected
	isConnected := status.State == telemetry.ConnectionStateConnected
	s.lastConnState = status.State
	s.lastStateSet = true
	s.mu.Unlock()

	switch {
	case isConnected && !wasConnected:
		s.sender.Send(Payload{Title: "Simulator connected", Content: "Telemetry is live"})
	case !isConnected && wasConnected:
		s.sender.Send(Payload{Title: "Simulator disconnected", Content: "Telemetry stopped"})
	}
}

func (s *Service) handleRunStatus(change telemetry.RunStatusChange) {
	if !s.prefs.OnRunStatus {
		return
	}
	s.sender.Send(Payload{
		Title:   "Session status changed",
		Content: fmt.Sprintf("Run status is now %s", change.Current),
	})
}
