// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package fusion joins the three processed sensor streams into one tagged
// stream and folds a running estimate over it.
package fusion

import (
	"github.com/relabs-tech/flight_computer/internal/imu"
	"github.com/relabs-tech/flight_computer/internal/pipeline"
)

// Kind tags a SensorInput with the sensor it came from.
type Kind int

const (
	KindAccel Kind = iota
	KindGyro
	KindMag
)

func (k Kind) String() string {
	switch k {
	case KindAccel:
		return "accel"
	case KindGyro:
		return "gyro"
	case KindMag:
		return "mag"
	}
	return "unknown"
}

// SensorInput is one processed sample from any of the three sensors,
// tagged so the fusion fold can tell them apart. Only the payload matching
// Kind is set; construct through AccelInput, GyroInput or MagInput.
type SensorInput struct {
	Kind  Kind               `json:"kind"`
	Accel imu.ProcessedAccel `json:"accel,omitempty"`
	Gyro  imu.ProcessedGyro  `json:"gyro,omitempty"`
	Mag   imu.ProcessedMag   `json:"mag,omitempty"`
}

// AccelInput wraps a processed acceleration.
func AccelInput(p imu.ProcessedAccel) SensorInput {
	return SensorInput{Kind: KindAccel, Accel: p}
}

// GyroInput wraps a processed angular rate.
func GyroInput(p imu.ProcessedGyro) SensorInput {
	return SensorInput{Kind: KindGyro, Gyro: p}
}

// MagInput wraps a processed magnetic field.
func MagInput(p imu.ProcessedMag) SensorInput {
	return SensorInput{Kind: KindMag, Mag: p}
}

// The three tagged sinks back onto one shared channel; the channel's own
// synchronization is what makes the concurrent fan-in safe.

// AccelSink delivers processed accelerations into the fan-in channel.
type AccelSink struct {
	C chan<- SensorInput
}

func (s AccelSink) Send(p imu.ProcessedAccel) error {
	s.C <- AccelInput(p)
	return nil
}

// GyroSink delivers processed angular rates into the fan-in channel.
type GyroSink struct {
	C chan<- SensorInput
}

func (s GyroSink) Send(p imu.ProcessedGyro) error {
	s.C <- GyroInput(p)
	return nil
}

// MagSink delivers processed magnetic fields into the fan-in channel.
type MagSink struct {
	C chan<- SensorInput
}

func (s MagSink) Send(p imu.ProcessedMag) error {
	s.C <- MagInput(p)
	return nil
}

var (
	_ pipeline.Sink[imu.ProcessedAccel] = AccelSink{}
	_ pipeline.Sink[imu.ProcessedGyro]  = GyroSink{}
	_ pipeline.Sink[imu.ProcessedMag]   = MagSink{}
)
