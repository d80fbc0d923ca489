package telemetry

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// Test-side encoders mirroring the publisher's layout, used to build record
// fixtures and to verify the decoders field by field.

type builder struct {
	buf []byte
	off int
}

func newBuilder(size int) *builder {
	return &builder{buf: make([]byte, size)}
}

func (b *builder) i32(v int32) {
	binary.LittleEndian.PutUint32(b.buf[b.off:], uint32(v))
	b.off += 4
}

func (b *builder) f32(v float32) {
	binary.LittleEndian.PutUint32(b.buf[b.off:], math.Float32bits(v))
	b.off += 4
}

func (b *builder) b32(v bool) {
	if v {
		b.i32(1)
	} else {
		b.i32(0)
	}
}

func (b *builder) f32s(vs []float32) {
	for _, v := range vs {
		b.f32(v)
	}
}

func (b *builder) wstr(s string, n int) {
	units := utf16.Encode([]rune(s))
	for i := 0; i < n; i++ {
		var u uint16
		if i < len(units) {
			u = units[i]
		}
		binary.LittleEndian.PutUint16(b.buf[b.off:], u)
		b.off += 2
	}
}

func (b *builder) skip(n int) {
	b.off += n
}

func encodePhysics(p Physics) []byte {
	b := newBuilder(PhysicsSize)
	b.i32(p.PacketID)
	b.f32(p.Gas)
	b.f32(p.Brake)
	b.f32(p.Fuel)
	b.i32(p.Gear)
	b.i32(p.RPM)
	b.f32(p.SteerAngle)
	b.f32(p.SpeedKmh)
	b.f32s(p.Velocity[:])
	b.f32s(p.AccG[:])
	b.f32s(p.WheelSlip[:])
	b.f32s(p.WheelLoad[:])
	b.f32s(p.WheelPressure[:])
	b.f32s(p.WheelAngularSpeed[:])
	b.f32s(p.TyreWear[:])
	b.f32s(p.TyreDirt[:])
	b.f32s(p.TyreCoreTemp[:])
	b.f32s(p.CamberRad[:])
	b.f32s(p.SuspensionTravel[:])
	b.f32(p.DRS)
	b.f32(p.TC)
	b.f32(p.Heading)
	b.f32(p.Pitch)
	b.f32(p.Roll)
	b.f32(p.CGHeight)
	b.f32s(p.CarDamage[:])
	b.i32(p.NumberOfTyresOut)
	b.b32(p.PitLimiterOn)
	b.f32(p.ABS)

	return b.buf
}

func encodeGraphics(g Graphics) []byte {
	b := newBuilder(GraphicsSize)
	b.i32(g.PacketID)
	b.i32(int32(g.Status))
	b.i32(int32(g.Session))
	b.wstr(g.CurrentTime, 15)
	b.wstr(g.LastTime, 15)
	b.wstr(g.BestTime, 15)
	b.wstr(g.Split, 15)
	b.i32(g.CompletedLaps)
	b.i32(g.Position)
	b.i32(g.CurrentTimeMs)
	b.i32(g.LastTimeMs)
	b.i32(g.BestTimeMs)
	b.f32(g.SessionTimeLeft)
	b.f32(g.DistanceTraveled)
	b.b32(g.IsInPit)
	b.i32(g.CurrentSectorIdx)
	b.i32(g.LastSectorTimeMs)
	b.i32(g.NumberOfLaps)
	b.wstr(g.TyreCompound, 33)
	b.skip(2)
	b.f32(g.ReplayMultiplier)
	b.f32(g.NormalizedCarPos)
	b.f32s(g.CarCoordinates[:])

	return b.buf
}

func encodeStaticInfo(s StaticInfo) []byte {
	b := newBuilder(StaticInfoSize)
	b.wstr(s.SMVersion, 15)
	b.wstr(s.SimVersion, 15)
	b.i32(s.NumberOfSessions)
	b.i32(s.NumCars)
	b.wstr(s.CarModel, 33)
	b.wstr(s.Track, 33)
	b.wstr(s.PlayerName, 33)
	b.wstr(s.PlayerSurname, 33)
	b.wstr(s.PlayerNick, 33)
	b.skip(2)
	b.i32(s.SectorCount)
	b.f32(s.MaxTorque)
	b.f32(s.MaxPower)
	b.i32(s.MaxRPM)
	b.f32(s.MaxFuel)
	b.f32s(s.SuspensionMaxTravel[:])
	b.f32s(s.TyreRadius[:])
	b.f32(s.MaxTurboBoost)
	b.skip(8)
	b.b32(s.PenaltiesEnabled)
	b.f32(s.AidFuelRate)
	b.f32(s.AidTyreRate)
	b.f32(s.AidMechanicalDamage)
	b.f32(s.AidTyreBlankets)
	b.f32(s.AidStability)
	b.b32(s.AidAutoClutch)
	b.b32(s.AidAutoBlip)

	return b.buf
}

func samplePhysics() Physics {
	return Physics{
		PacketID:          4211,
		Gas:               0.82,
		Brake:             0.0,
		Fuel:              31.5,
		Gear:              4,
		RPM:               7250,
		SteerAngle:        -0.12,
		SpeedKmh:          212.4,
		Velocity:          [3]float32{58.9, 0.02, 1.3},
		AccG:              [3]float32{0.1, 0.98, -1.4},
		WheelSlip:         [4]float32{0.01, 0.02, 0.4, 0.38},
		WheelLoad:         [4]float32{2800, 2750, 3100, 3050},
		WheelPressure:     [4]float32{26.1, 26.0, 25.8, 25.9},
		WheelAngularSpeed: [4]float32{88.1, 88.0, 90.4, 90.2},
		TyreWear:          [4]float32{94.0, 94.2, 92.8, 93.0},
		TyreDirt:          [4]float32{0, 0, 0.3, 0.2},
		TyreCoreTemp:      [4]float32{82.5, 82.1, 88.0, 87.4},
		CamberRad:         [4]float32{-0.05, -0.05, -0.04, -0.04},
		SuspensionTravel:  [4]float32{0.03, 0.028, 0.05, 0.048},
		DRS:               1,
		TC:                0.2,
		Heading:           1.57,
		Pitch:             -0.01,
		Roll:              0.004,
		CGHeight:          0.32,
		CarDamage:         [5]float32{0, 0, 12.5, 0, 0},
		NumberOfTyresOut:  1,
		PitLimiterOn:      false,
		ABS:               0.15,
	}
}

func sampleGraphics() Graphics {
	return Graphics{
		PacketID:         9977,
		Status:           StatusLive,
		Session:          SessionRace,
		CurrentTime:      "1:43:210",
		LastTime:         "1:44:002",
		BestTime:         "1:42:869",
		Split:            "-0:00:341",
		CompletedLaps:    12,
		Position:         3,
		CurrentTimeMs:    103210,
		LastTimeMs:       104002,
		BestTimeMs:       102869,
		SessionTimeLeft:  1803.5,
		DistanceTraveled: 68421.9,
		IsInPit:          false,
		CurrentSectorIdx: 2,
		LastSectorTimeMs: 31250,
		NumberOfLaps:     24,
		TyreCompound:     "soft_slick",
		ReplayMultiplier: 1,
		NormalizedCarPos: 0.612,
		CarCoordinates:   [3]float32{412.7, 8.3, -90.4},
	}
}

func sampleStaticInfo() StaticInfo {
	return StaticInfo{
		SMVersion:           "1.7",
		SimVersion:          "1.16.3",
		NumberOfSessions:    3,
		NumCars:             1,
		CarModel:            "gt3_factory_r",
		Track:               "grand_valley",
		PlayerName:          "José",
		PlayerSurname:       "Öster",
		PlayerNick:          "joe",
		SectorCount:         3,
		MaxTorque:           520.5,
		MaxPower:            445.2,
		MaxRPM:              8500,
		MaxFuel:             110,
		SuspensionMaxTravel: [4]float32{0.12, 0.12, 0.14, 0.14},
		TyreRadius:          [4]float32{0.32, 0.32, 0.34, 0.34},
		MaxTurboBoost:       1.8,
		PenaltiesEnabled:    true,
		AidFuelRate:         1,
		AidTyreRate:         1,
		AidMechanicalDamage: 0.5,
		AidTyreBlankets:     1,
		AidStability:        0,
		AidAutoClutch:       false,
		AidAutoBlip:         true,
	}
}
