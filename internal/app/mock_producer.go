// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/flight_computer/internal/config"
	"github.com/relabs-tech/flight_computer/internal/imu"
	"github.com/relabs-tech/flight_computer/internal/pipeline"
)

// Synthetic motion: a slow roll oscillation with a steady yaw drift, in
// raw counts at the default sensitivities.
const (
	synthLSBPerG   = 16384.0
	synthLSBPerDps = 131.0
	synthLSBPerUT  = 10.9

	synthRollAmplDeg = 20.0
	synthRollFreqHz  = 0.1
	synthYawRateDps  = 3.0
	synthFieldUT     = 45.0
)

func synthAccel(elapsed float64) imu.RawAccel {
	roll := synthRollAmplDeg * math.Pi / 180.0 * math.Sin(2*math.Pi*synthRollFreqHz*elapsed)
	return imu.RawAccel{
		X: 0,
		Y: int16(math.Sin(roll) * synthLSBPerG),
		Z: int16(math.Cos(roll) * synthLSBPerG),
	}
}

func synthGyro(elapsed float64) imu.RawGyro {
	rollRate := synthRollAmplDeg * 2 * math.Pi * synthRollFreqHz * math.Cos(2*math.Pi*synthRollFreqHz*elapsed)
	return imu.RawGyro{
		X: int16(rollRate * synthLSBPerDps),
		Y: 0,
		Z: int16(synthYawRateDps * synthLSBPerDps),
	}
}

func synthMag(elapsed float64) imu.RawMag {
	heading := synthYawRateDps * math.Pi / 180.0 * elapsed
	return imu.RawMag{
		X: int16(math.Cos(heading) * synthFieldUT * synthLSBPerUT),
		Y: int16(-math.Sin(heading) * synthFieldUT * synthLSBPerUT),
		Z: int16(-30.0 * synthLSBPerUT),
	}
}

// RunMockProducer drives the full pipeline from synthetic sample sources
// instead of hardware, for bench runs against a live broker.
func RunMockProducer() error {
	log.Println("starting flight-computer mock producer")

	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDFC + "-mock")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	interval := time.Duration(cfg.IMUSampleInterval) * time.Millisecond
	accelSrc := pipeline.NewSynthSource(interval, synthAccel)
	gyroSrc := pipeline.NewSynthSource(interval, synthGyro)
	magSrc := pipeline.NewSynthSource(interval, synthMag)

	p := startPipeline(client, cfg, accelSrc, gyroSrc, magSrc,
		synthLSBPerG, synthLSBPerDps, synthLSBPerUT)

	log.Println("mock pipeline running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("signal received, shutting down")
	accelSrc.Close()
	gyroSrc.Close()
	magSrc.Close()

	if err := p.join(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	log.Println("pipeline drained, bye")
	return nil
}
