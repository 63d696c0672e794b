// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"

	"github.com/relabs-tech/flight_computer/internal/bus"
	"github.com/relabs-tech/flight_computer/internal/imu"
)

// HMC5983 register addresses.
const (
	hmcRegConfigA = 0x00
	hmcRegDataX   = 0x03
	hmcRegIDA     = 0x0A
)

// hmcIdentity is the content of identification registers A through C.
var hmcIdentity = [3]byte{'H', '4', '3'}

// lsbPerGauss maps the gain code (config register B bits 7:5) to
// sensitivity. Index is the gain code.
var lsbPerGauss = [8]float64{1370, 1090, 820, 660, 440, 390, 330, 230}

// HMCConfig configures the magnetometer: output data rate code (0-6, 6 is
// 75 Hz), samples averaged per output (code 0-3 for 1/2/4/8) and gain code.
type HMCConfig struct {
	ODR  byte
	Avg  byte
	Gain byte
}

// DefaultHMCConfig selects 15 Hz output, no averaging, ±1.3 Ga.
func DefaultHMCConfig() HMCConfig {
	return HMCConfig{ODR: 4, Avg: 0, Gain: 1}
}

func (c HMCConfig) validate() error {
	if c.ODR > 6 {
		return fmt.Errorf("ODR code %d out of range 0-6", c.ODR)
	}
	if c.Avg > 3 {
		return fmt.Errorf("averaging code %d out of range 0-3", c.Avg)
	}
	if c.Gain > 7 {
		return fmt.Errorf("gain code %d out of range 0-7", c.Gain)
	}
	return nil
}

// HMC5983 is a magnetometer on a register bus. Same ownership rule as the
// IMU: one goroutine, sequential transactions.
type HMC5983 struct {
	bus bus.Bus
	cfg HMCConfig
}

// NewHMC5983 verifies the three identification registers spell "H43" and
// writes configuration registers A, B and mode (continuous measurement) in
// one burst. On an identity mismatch nothing is written.
func NewHMC5983(b bus.Bus, cfg HMCConfig) (*HMC5983, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var id [3]byte
	if err := bus.ReadRegisterBlock(b, hmcRegIDA, id[:]); err != nil {
		return nil, fmt.Errorf("reading identification: %w", err)
	}
	if id != hmcIdentity {
		return nil, fmt.Errorf("identification returned %q, want %q: %w",
			id[:], hmcIdentity[:], ErrIdentityMismatch)
	}

	if err := bus.WriteRegister(b, hmcRegConfigA,
		cfg.Avg<<5|cfg.ODR<<2, // config A: averaging, data rate
		cfg.Gain<<5,           // config B: gain
		0x00,                  // mode: continuous measurement
	); err != nil {
		return nil, fmt.Errorf("writing configuration: %w", err)
	}

	return &HMC5983{bus: b, cfg: cfg}, nil
}

// Config returns the configuration the device was initialized with.
func (h *HMC5983) Config() HMCConfig { return h.cfg }

// LSBPerUT returns raw counts per µT for the configured gain.
func (h *HMC5983) LSBPerUT() float64 {
	return lsbPerGauss[h.cfg.Gain] / 100.0 // 1 Ga = 100 µT
}

// ReadRaw performs one 6-byte block read of the output registers. The
// device emits the axes in X, Z, Y order, big-endian.
func (h *HMC5983) ReadRaw() (imu.RawMag, error) {
	var buf [6]byte
	if err := bus.ReadRegisterBlock(h.bus, hmcRegDataX, buf[:]); err != nil {
		return imu.RawMag{}, fmt.Errorf("reading output block: %w", err)
	}

	i16 := func(off int) int16 {
		return int16(binary.BigEndian.Uint16(buf[off : off+2]))
	}
	return imu.RawMag{X: i16(0), Z: i16(2), Y: i16(4)}, nil
}
