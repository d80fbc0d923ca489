package telemetry

import "errors"

var (
	// ErrNotConnected means a read was attempted while the manager holds no
	// open region handles.
	ErrNotConnected = errors.New("telemetry: not connected")
	// ErrLayoutMismatch means a record buffer does not match the fixed
	// layout size, i.e. reader and publisher disagree on the layout
	// version. Never masked as ErrNotConnected.
	ErrLayoutMismatch = errors.New("telemetry: record layout mismatch")
)
