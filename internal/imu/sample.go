// Package imu holds the sample types flowing through the flight computer:
// raw per-sensor readings, their processed counterparts in physical units,
// and the fully decoded block sample.
package imu

// RawAccel is an unprocessed accelerometer reading in raw counts.
type RawAccel struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// RawGyro is an unprocessed angular-rate reading in raw counts.
type RawGyro struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// RawMag is an unprocessed magnetic-field reading in raw counts.
type RawMag struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// ProcessedAccel is a calibrated acceleration in g.
type ProcessedAccel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ProcessedGyro is a calibrated angular rate in °/s.
type ProcessedGyro struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ProcessedMag is a calibrated magnetic field in µT.
type ProcessedMag struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// The processed constructors are the only way a processed sample comes to
// exist, each from the raw sample of the same kind. lsbPer* is the
// sensitivity for the configured full-scale range.

// NewProcessedAccel scales a raw accelerometer reading to g.
func NewProcessedAccel(r RawAccel, lsbPerG float64) ProcessedAccel {
	return ProcessedAccel{
		X: float64(r.X) / lsbPerG,
		Y: float64(r.Y) / lsbPerG,
		Z: float64(r.Z) / lsbPerG,
	}
}

// NewProcessedGyro scales a raw gyroscope reading to °/s.
func NewProcessedGyro(r RawGyro, lsbPerDps float64) ProcessedGyro {
	return ProcessedGyro{
		X: float64(r.X) / lsbPerDps,
		Y: float64(r.Y) / lsbPerDps,
		Z: float64(r.Z) / lsbPerDps,
	}
}

// NewProcessedMag scales a raw magnetometer reading to µT.
func NewProcessedMag(r RawMag, lsbPerUT float64) ProcessedMag {
	return ProcessedMag{
		X: float64(r.X) / lsbPerUT,
		Y: float64(r.Y) / lsbPerUT,
		Z: float64(r.Z) / lsbPerUT,
	}
}

// RawSample is one undecoded 14-byte measurement window: accelerometer,
// temperature, gyroscope, in register order.
type RawSample struct {
	Accel RawAccel `json:"accel"`
	Temp  int16    `json:"temp"`
	Gyro  RawGyro  `json:"gyro"`
}

// CalibratedSample is one fully decoded IMU reading in physical units.
// Immutable once returned by the acquisition unit.
type CalibratedSample struct {
	Ax float64 `json:"ax"` // acceleration, g
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	TempC float64 `json:"temp_c"` // die temperature, °C

	Gx float64 `json:"gx"` // angular rate, °/s
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`
}
