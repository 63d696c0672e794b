// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/flight_computer/internal/bus"
	"github.com/relabs-tech/flight_computer/internal/config"
	"github.com/relabs-tech/flight_computer/internal/imu"
	"github.com/relabs-tech/flight_computer/internal/pipeline"
	"github.com/relabs-tech/flight_computer/internal/sensors"
)

// RunFlightProducer is the flight computer proper: it samples the MPU-9150
// and HMC5983 on a fixed tick, feeds the raw readings through the
// concurrent pipeline and publishes raw, processed and fused values to
// MQTT. It runs until SIGINT/SIGTERM, then drains the pipeline before
// returning.
func RunFlightProducer() error {
	log.Println("starting flight-computer producer")

	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	imuBus, err := bus.OpenI2C(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	if err != nil {
		return fmt.Errorf("IMU bus: %w", err)
	}
	defer imuBus.Close()

	magBus, err := bus.OpenI2C(cfg.IMUI2CBus, cfg.MagI2CAddr)
	if err != nil {
		return fmt.Errorf("mag bus: %w", err)
	}
	defer magBus.Close()

	mpu, err := sensors.NewMPU9150(imuBus, sensors.MPUConfig{
		AccelRange:    sensors.AccelRange(cfg.IMUAccelRange),
		GyroRange:     sensors.GyroRange(cfg.IMUGyroRange),
		SampleRateDiv: cfg.IMUSampleRateDiv,
		DLPF:          cfg.IMUDLPFConfig,
	})
	if err != nil {
		return fmt.Errorf("MPU9150 init: %w", err)
	}
	log.Printf("MPU9150 initialized: accel ±%dg, gyro ±%d°/s",
		mpu.Config().AccelRange.FullScaleG(), mpu.Config().GyroRange.FullScaleDps())

	mag, err := sensors.NewHMC5983(magBus, sensors.HMCConfig{
		ODR:  cfg.MagODR,
		Avg:  cfg.MagAvg,
		Gain: cfg.MagGain,
	})
	if err != nil {
		return fmt.Errorf("HMC5983 init: %w", err)
	}
	log.Println("HMC5983 initialized")

	// Connect to MQTT.
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDFC)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// Raw sample channels feeding the per-sensor actors. Closing them is
	// the shutdown signal for the whole pipeline.
	rawAccel := make(chan imu.RawAccel)
	rawGyro := make(chan imu.RawGyro)
	rawMag := make(chan imu.RawMag)

	p := startPipeline(client, cfg,
		pipeline.SourceOf(rawAccel),
		pipeline.SourceOf(rawGyro),
		pipeline.SourceOf(rawMag),
		mpu.Config().AccelRange.LSBPerG(),
		mpu.Config().GyroRange.LSBPerDps(),
		mag.LSBPerUT())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("starting sample loop")

loop:
	for {
		select {
		case <-sigCh:
			log.Println("signal received, shutting down")
			break loop

		case t := <-ticker.C:
			raw, err := mpu.ReadRaw()
			if err != nil {
				log.Printf("IMU read error: %v", err)
				continue
			}

			magRaw, err := mag.ReadRaw()
			if err != nil {
				log.Printf("mag read error: %v", err)
				continue
			}

			rawAccel <- raw.Accel
			rawGyro <- raw.Gyro
			rawMag <- magRaw

			if payload, err := json.Marshal(raw); err != nil {
				log.Printf("raw sample marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicIMURaw, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (imu/raw): %v", token.Error())
			}

			log.Printf("%s tick: accel %6d %6d %6d | gyro %6d %6d %6d | mag %6d %6d %6d | temp %6d",
				t.Format(time.RFC3339),
				raw.Accel.X, raw.Accel.Y, raw.Accel.Z,
				raw.Gyro.X, raw.Gyro.Y, raw.Gyro.Z,
				magRaw.X, magRaw.Y, magRaw.Z,
				raw.Temp)
		}
	}

	close(rawAccel)
	close(rawGyro)
	close(rawMag)

	if err := p.join(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	log.Println("pipeline drained, bye")
	return nil
}
