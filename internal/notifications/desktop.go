package notifications

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// DesktopSender delivers notifications through the OS notification center.
type DesktopSender struct {
	appName string
	logger  *slog.Logger
}

func NewDesktopSender(appName string, logger *slog.Logger) *DesktopSender {
	return &DesktopSender{appName: appName, logger: logger}
}

func (s *DesktopSender) Send(payload Payload) {
	beeep.AppName = s.appName
	if err := beeep.Notify(payload.Title, payload.Content, ""); err != nil {
		s.logger.Warn("desktop notification failed", "title", payload.Title, "error", err)
	}
}
