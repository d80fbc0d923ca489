package telemetry

import "time"

// Bus topics published by the manager and dispatcher.
const (
	TopicConnStatus         = "telemetry.conn.status"
	TopicPhysicsUpdated     = "telemetry.physics.updated"
	TopicGraphicsUpdated    = "telemetry.graphics.updated"
	TopicStaticInfoUpdated  = "telemetry.static.updated"
	TopicRunStatusChanged   = "telemetry.status.changed"
	TopicPitStatusChanged   = "telemetry.pit.changed"
	TopicSessionTypeChanged = "telemetry.session.changed"
)

// ConnectionState is the manager's lifecycle state.
type ConnectionState string

const (
	ConnectionStateDisconnected ConnectionState = "disconnected"
	ConnectionStateConnecting   ConnectionState = "connecting"
	ConnectionStateConnected    ConnectionState = "connected"
)

// ConnStatus is a bus snapshot of the manager's connection state.
type ConnStatus struct {
	State     ConnectionState
	Err       string
	Timestamp time.Time
}

// RunStatusChange fires when the simulator run status differs from the
// previously observed value.
type RunStatusChange struct {
	Previous Status
	Current  Status
}

// PitStatusChange fires when the car enters or leaves the pit lane.
// Current is true while in the pit.
type PitStatusChange struct {
	Previous bool
	Current  bool
}

// SessionTypeChange fires when the active session kind changes.
type SessionTypeChange struct {
	Previous SessionType
	Current  SessionType
}
