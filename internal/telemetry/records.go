// Package telemetry reads live simulation telemetry out of the three
// shared-memory regions the simulator publishes: physics, graphics and
// static session info. A Manager owns the region handles and their pollers
// and fans decoded records out over the message bus.
package telemetry

// Shared-memory segment names, fixed by the publisher.
const (
	physicsRegionName  = "acpmf_physics"
	graphicsRegionName = "acpmf_graphics"
	staticRegionName   = "acpmf_static"
)

// Record sizes in bytes, fixed by the publisher's layout version.
const (
	PhysicsSize    = 256
	GraphicsSize   = 264
	StaticInfoSize = 496
)

// Status is the simulator run status from the graphics record.
type Status int32

const (
	StatusOff Status = iota
	StatusReplay
	StatusLive
	StatusPause
)

func (s Status) String() string {
	switch s {
	case StatusOff:
		return "off"
	case StatusReplay:
		return "replay"
	case StatusLive:
		return "live"
	case StatusPause:
		return "pause"
	default:
		return "unknown"
	}
}

// SessionType is the active session kind from the graphics record.
type SessionType int32

const (
	SessionUnknown    SessionType = -1
	SessionPractice   SessionType = 0
	SessionQualify    SessionType = 1
	SessionRace       SessionType = 2
	SessionHotlap     SessionType = 3
	SessionTimeAttack SessionType = 4
	SessionDrag       SessionType = 5
	SessionDrift      SessionType = 6
)

func (s SessionType) String() string {
	switch s {
	case SessionPractice:
		return "practice"
	case SessionQualify:
		return "qualify"
	case SessionRace:
		return "race"
	case SessionHotlap:
		return "hotlap"
	case SessionTimeAttack:
		return "time_attack"
	case SessionDrag:
		return "drag"
	case SessionDrift:
		return "drift"
	default:
		return "unknown"
	}
}

// Physics is one decoded physics record. The publisher rewrites the region
// in place; every successful read produces a fresh value.
type Physics struct {
	PacketID   int32
	Gas        float32
	Brake      float32
	Fuel       float32
	Gear       int32
	RPM        int32
	SteerAngle float32
	SpeedKmh   float32

	Velocity [3]float32
	AccG     [3]float32

	WheelSlip         [4]float32
	WheelLoad         [4]float32
	WheelPressure     [4]float32
	WheelAngularSpeed [4]float32
	TyreWear          [4]float32
	TyreDirt          [4]float32
	TyreCoreTemp      [4]float32
	CamberRad         [4]float32
	SuspensionTravel  [4]float32

	DRS      float32
	TC       float32
	Heading  float32
	Pitch    float32
	Roll     float32
	CGHeight float32

	CarDamage        [5]float32
	NumberOfTyresOut int32
	PitLimiterOn     bool
	ABS              float32
}

// Graphics is one decoded graphics record. Status, IsInPit and Session feed
// the change-detection dispatcher.
type Graphics struct {
	PacketID int32
	Status   Status
	Session  SessionType

	CurrentTime string
	LastTime    string
	BestTime    string
	Split       string

	CompletedLaps int32
	Position      int32
	CurrentTimeMs int32
	LastTimeMs    int32
	BestTimeMs    int32

	SessionTimeLeft  float32
	DistanceTraveled float32
	IsInPit          bool
	CurrentSectorIdx int32
	LastSectorTimeMs int32
	NumberOfLaps     int32
	TyreCompound     string
	ReplayMultiplier float32
	NormalizedCarPos float32
	CarCoordinates   [3]float32
}

// StaticInfo is one decoded static-info record. It changes at most once per
// session, hence the slow default poll cadence.
type StaticInfo struct {
	SMVersion  string
	SimVersion string

	NumberOfSessions int32
	NumCars          int32

	CarModel      string
	Track         string
	PlayerName    string
	PlayerSurname string
	PlayerNick    string

	SectorCount int32

	MaxTorque float32
	MaxPower  float32
	MaxRPM    int32
	MaxFuel   float32

	SuspensionMaxTravel [4]float32
	TyreRadius          [4]float32

	MaxTurboBoost       float32
	PenaltiesEnabled    bool
	AidFuelRate         float32
	AidTyreRate         float32
	AidMechanicalDamage float32
	AidTyreBlankets     float32
	AidStability        float32
	AidAutoClutch       bool
	AidAutoBlip         bool
}
