package telemetry

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

// The publisher writes plain little-endian C structs. Strings are fixed
// UTF-16 arrays, NUL-terminated. Layout is protocol-locked; a buffer of the
// wrong length means reader and publisher disagree on the layout version,
// which is a configuration fault, not a transient read error.

// DecodePhysics decodes one physics record. Pure; no IO, no side effects.
func DecodePhysics(raw []byte) (Physics, error) {
	if len(raw) != PhysicsSize {
		return Physics{}, fmt.Errorf("physics record is %d bytes, layout says %d: %w", len(raw), PhysicsSize, ErrLayoutMismatch)
	}

	c := cursor{buf: raw}
	var p Physics
	p.PacketID = c.i32()
	p.Gas = c.f32()
	p.Brake = c.f32()
	p.Fuel = c.f32()
	p.Gear = c.i32()
	p.RPM = c.i32()
	p.SteerAngle = c.f32()
	p.SpeedKmh = c.f32()
	c.f32s(p.Velocity[:])
	c.f32s(p.AccG[:])
	c.f32s(p.WheelSlip[:])
	c.f32s(p.WheelLoad[:])
	c.f32s(p.WheelPressure[:])
	c.f32s(p.WheelAngularSpeed[:])
	c.f32s(p.TyreWear[:])
	c.f32s(p.TyreDirt[:])
	c.f32s(p.TyreCoreTemp[:])
	c.f32s(p.CamberRad[:])
	c.f32s(p.SuspensionTravel[:])
	p.DRS = c.f32()
	p.TC = c.f32()
	p.Heading = c.f32()
	p.Pitch = c.f32()
	p.Roll = c.f32()
	p.CGHeight = c.f32()
	c.f32s(p.CarDamage[:])
	p.NumberOfTyresOut = c.i32()
	p.PitLimiterOn = c.b32()
	p.ABS = c.f32()

	return p, nil
}

// DecodeGraphics decodes one graphics record.
func DecodeGraphics(raw []byte) (Graphics, error) {
	if len(raw) != GraphicsSize {
		return Graphics{}, fmt.Errorf("graphics record is %d bytes, layout says %d: %w", len(raw), GraphicsSize, ErrLayoutMismatch)
	}

	c := cursor{buf: raw}
	var g Graphics
	g.PacketID = c.i32()
	g.Status = Status(c.i32())
	g.Session = SessionType(c.i32())
	g.CurrentTime = c.wstr(15)
	g.LastTime = c.wstr(15)
	g.BestTime = c.wstr(15)
	g.Split = c.wstr(15)
	g.CompletedLaps = c.i32()
	g.Position = c.i32()
	g.CurrentTimeMs = c.i32()
	g.LastTimeMs = c.i32()
	g.BestTimeMs = c.i32()
	g.SessionTimeLeft = c.f32()
	g.DistanceTraveled = c.f32()
	g.IsInPit = c.b32()
	g.CurrentSectorIdx = c.i32()
	g.LastSectorTimeMs = c.i32()
	g.NumberOfLaps = c.i32()
	g.TyreCompound = c.wstr(33)
	c.skip(2) // alignment pad after the odd-length compound string
	g.ReplayMultiplier = c.f32()
	g.NormalizedCarPos = c.f32()
	c.f32s(g.CarCoordinates[:])

	return g, nil
}

// DecodeStaticInfo decodes one static-info record.
func DecodeStaticInfo(raw []byte) (StaticInfo, error) {
	if len(raw) != StaticInfoSize {
		return StaticInfo{}, fmt.Errorf("static info record is %d bytes, layout says %d: %w", len(raw), StaticInfoSize, ErrLayoutMismatch)
	}

	c := cursor{buf: raw}
	var s StaticInfo
	s.SMVersion = c.wstr(15)
	s.SimVersion = c.wstr(15)
	s.NumberOfSessions = c.i32()
	s.NumCars = c.i32()
	s.CarModel = c.wstr(33)
	s.Track = c.wstr(33)
	s.PlayerName = c.wstr(33)
	s.PlayerSurname = c.wstr(33)
	s.PlayerNick = c.wstr(33)
	c.skip(2) // alignment pad after the fifth 33-wchar string
	s.SectorCount = c.i32()
	s.MaxTorque = c.f32()
	s.MaxPower = c.f32()
	s.MaxRPM = c.i32()
	s.MaxFuel = c.f32()
	c.f32s(s.SuspensionMaxTravel[:])
	c.f32s(s.TyreRadius[:])
	s.MaxTurboBoost = c.f32()
	c.skip(8) // two reserved floats kept for layout compatibility
	s.PenaltiesEnabled = c.b32()
	s.AidFuelRate = c.f32()
	s.AidTyreRate = c.f32()
	s.AidMechanicalDamage = c.f32()
	s.AidTyreBlankets = c.f32()
	s.AidStability = c.f32()
	s.AidAutoClutch = c.b32()
	s.AidAutoBlip = c.b32()

	return s, nil
}

// cursor walks a record buffer field by field. Bounds are guaranteed by the
// length check in each decoder, so reads do not re-check.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) i32() int32 {
	v := int32(binary.LittleEndian.Uint32(c.buf[c.off:]))
	c.off += 4

	return v
}

func (c *cursor) f32() float32 {
	v := math.Float32frombits(binary.LittleEndian.Uint32(c.buf[c.off:]))
	c.off += 4

	return v
}

func (c *cursor) b32() bool {
	return c.i32() != 0
}

func (c *cursor) f32s(dst []float32) {
	for i := range dst {
		dst[i] = c.f32()
	}
}

// wstr reads a fixed array of n UTF-16 code units and cuts it at the first
// NUL, the way the publisher terminates its strings.
func (c *cursor) wstr(n int) string {
	units := make([]uint16, 0, n)
	for i := 0; i < n; i++ {
		u := binary.LittleEndian.Uint16(c.buf[c.off:])
		c.off += 2
		if u == 0 {
			c.off += 2 * (n - i - 1)
			break
		}
		units = append(units, u)
	}

	return string(utf16.Decode(units))
}

func (c *cursor) skip(n int) {
	c.off += n
}
