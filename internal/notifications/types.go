// Package notifications raises desktop notifications for telemetry state
// changes. It is a bus consumer: the core reader does not depend on it.
package notifications

// Payload is a user-facing notification payload.
type Payload struct {
	Title   string
	Content string
}

// Sender sends notifications using a platform-specific backend.
type Sender interface {
	Send(payload Payload)
}
