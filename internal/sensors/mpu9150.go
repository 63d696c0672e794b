// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors drives the register-addressed devices: the MPU-9150 IMU
// and the HMC5983 magnetometer, plus the BMP environmental sensor.
package sensors

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/relabs-tech/flight_computer/internal/bus"
	"github.com/relabs-tech/flight_computer/internal/imu"
)

// MPU-9150 register addresses.
const (
	regSampleRateDiv = 0x19
	regAccelXOutH    = 0x3B
	regPwrMgmt1      = 0x6B
	regWhoAmI        = 0x75

	mpu9150Identity = 0x68
)

// Temperature decode constants per the MPU-9150 datasheet. Unlike the
// accel/gyro divisors these do not depend on a configured range.
const (
	tempLSBPerC = 340.0
	tempOffsetC = 35.0
)

// ErrIdentityMismatch reports that the identity register of an addressed
// device did not return the expected constant: wrong chip or wrong address.
// Not retryable.
var ErrIdentityMismatch = errors.New("device identity mismatch")

// AccelRange selects the accelerometer full-scale range: 0=±2g, 1=±4g,
// 2=±8g, 3=±16g.
type AccelRange byte

// LSBPerG returns the sensitivity for the range: raw counts per g.
func (r AccelRange) LSBPerG() float64 { return 16384.0 / float64(int(1)<<r) }

// FullScaleG returns the range magnitude in g.
func (r AccelRange) FullScaleG() int { return 2 << r }

// GyroRange selects the gyroscope full-scale range: 0=±250°/s, 1=±500°/s,
// 2=±1000°/s, 3=±2000°/s.
type GyroRange byte

// LSBPerDps returns the sensitivity for the range: raw counts per °/s.
func (r GyroRange) LSBPerDps() float64 { return 131.0 / float64(int(1)<<r) }

// FullScaleDps returns the range magnitude in °/s.
func (r GyroRange) FullScaleDps() int { return 250 << r }

// MPUConfig is the configuration written to the device during NewMPU9150.
// The ranges stay attached to the unit afterwards so the decode divisors are
// always the ones matching what the hardware was told.
type MPUConfig struct {
	AccelRange    AccelRange
	GyroRange     GyroRange
	SampleRateDiv byte // output rate = internal 1kHz / (1 + div)
	DLPF          byte // low-pass filter selector, 0-7
}

// DefaultMPUConfig matches the flight configuration this product has always
// used: 5 Hz output, 5 Hz low-pass, ±250°/s, ±2g.
func DefaultMPUConfig() MPUConfig {
	return MPUConfig{
		AccelRange:    0,
		GyroRange:     0,
		SampleRateDiv: 199,
		DLPF:          0x06,
	}
}

func (c MPUConfig) validate() error {
	if c.AccelRange > 3 {
		return fmt.Errorf("accel range %d out of range 0-3", c.AccelRange)
	}
	if c.GyroRange > 3 {
		return fmt.Errorf("gyro range %d out of range 0-3", c.GyroRange)
	}
	if c.DLPF > 7 {
		return fmt.Errorf("DLPF %d out of range 0-7", c.DLPF)
	}
	return nil
}

// MPU9150 is one configured IMU on a register bus. The bus handle is
// exclusively owned by this unit; reads are sequential, never concurrent.
type MPU9150 struct {
	bus bus.Bus
	cfg MPUConfig
}

// NewMPU9150 verifies the device identity and writes its configuration.
//
// The WHO_AM_I register always reads 0x68 on an MPU-family IMU; anything
// else means we are talking to the wrong chip or the wrong address, and no
// configuration write is issued. On success the device is woken on its
// internal oscillator and the sample-rate divider, low-pass filter and both
// full-scale ranges are written in one burst (the register pointer
// auto-increments from SMPLRT_DIV through ACCEL_CONFIG).
func NewMPU9150(b bus.Bus, cfg MPUConfig) (*MPU9150, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var id [1]byte
	if err := bus.ReadRegisterBlock(b, regWhoAmI, id[:]); err != nil {
		return nil, fmt.Errorf("reading WHO_AM_I: %w", err)
	}
	if id[0] != mpu9150Identity {
		return nil, fmt.Errorf("WHO_AM_I returned 0x%02X, want 0x%02X: %w",
			id[0], mpu9150Identity, ErrIdentityMismatch)
	}

	// Wake the device, clearing sleep mode, on the internal oscillator.
	if err := bus.WriteRegister(b, regPwrMgmt1, 0x00); err != nil {
		return nil, fmt.Errorf("waking device: %w", err)
	}

	if err := bus.WriteRegister(b, regSampleRateDiv,
		cfg.SampleRateDiv,
		cfg.DLPF,
		byte(cfg.GyroRange)<<3,
		byte(cfg.AccelRange)<<3,
	); err != nil {
		return nil, fmt.Errorf("writing configuration: %w", err)
	}

	return &MPU9150{bus: b, cfg: cfg}, nil
}

// Config returns the configuration the device was initialized with.
func (m *MPU9150) Config() MPUConfig { return m.cfg }

// ReadRaw performs one atomic 14-byte block read of the measurement window
// and splits it into the raw per-sensor readings: three big-endian int16
// acceleration axes, one temperature word, three angular-rate axes.
//
// A failed read leaves no torn state behind; retrying is always safe.
func (m *MPU9150) ReadRaw() (imu.RawSample, error) {
	var buf [14]byte
	if err := bus.ReadRegisterBlock(m.bus, regAccelXOutH, buf[:]); err != nil {
		return imu.RawSample{}, fmt.Errorf("reading measurement block: %w", err)
	}

	i16 := func(off int) int16 {
		return int16(binary.BigEndian.Uint16(buf[off : off+2]))
	}
	return imu.RawSample{
		Accel: imu.RawAccel{X: i16(0), Y: i16(2), Z: i16(4)},
		Temp:  i16(6),
		Gyro:  imu.RawGyro{X: i16(8), Y: i16(10), Z: i16(12)},
	}, nil
}

// ReadSample reads one measurement block and decodes it into physical units
// using the sensitivities derived from the configured ranges.
func (m *MPU9150) ReadSample() (imu.CalibratedSample, error) {
	raw, err := m.ReadRaw()
	if err != nil {
		return imu.CalibratedSample{}, err
	}

	lsbPerG := m.cfg.AccelRange.LSBPerG()
	lsbPerDps := m.cfg.GyroRange.LSBPerDps()
	return imu.CalibratedSample{
		Ax:    float64(raw.Accel.X) / lsbPerG,
		Ay:    float64(raw.Accel.Y) / lsbPerG,
		Az:    float64(raw.Accel.Z) / lsbPerG,
		TempC: float64(raw.Temp)/tempLSBPerC + tempOffsetC,
		Gx:    float64(raw.Gyro.X) / lsbPerDps,
		Gy:    float64(raw.Gyro.Y) / lsbPerDps,
		Gz:    float64(raw.Gyro.Z) / lsbPerDps,
	}, nil
}
