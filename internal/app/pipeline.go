// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package app wires the sensor pipeline to its outer surfaces: MQTT
// producers and subscribers, the web server, the display and the register
// debug tool.
package app

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/flight_computer/internal/config"
	"github.com/relabs-tech/flight_computer/internal/fusion"
	"github.com/relabs-tech/flight_computer/internal/imu"
	"github.com/relabs-tech/flight_computer/internal/orientation"
	"github.com/relabs-tech/flight_computer/internal/pipeline"
)

// Complementary filter weights for the pose fold.
const (
	gyroWeight = 0.98
	magWeight  = 0.95
)

// newPoseFold returns the fold the fusion actor runs: gyro inputs propagate
// the pose over one sample interval, accel inputs pull roll/pitch toward
// the tilt reference, mag inputs pull yaw toward magnetic heading. dt is
// the fixed seconds between samples of one sensor.
func newPoseFold(dt float64) fusion.Fold[orientation.Pose] {
	return func(pose orientation.Pose, in fusion.SensorInput) orientation.Pose {
		switch in.Kind {
		case fusion.KindAccel:
			ref := orientation.ComputePoseFromAccel(in.Accel.X, in.Accel.Y, in.Accel.Z)
			return orientation.Complementary(pose, ref, gyroWeight)
		case fusion.KindGyro:
			return orientation.IntegrateGyro(pose, in.Gyro.X, in.Gyro.Y, in.Gyro.Z, dt)
		case fusion.KindMag:
			pose.Yaw = orientation.BlendYaw(pose.Yaw, orientation.YawFromMag(in.Mag.X, in.Mag.Y), magWeight)
			return pose
		}
		return pose
	}
}

// publishSink forwards every value to the wrapped sink and, on the side,
// publishes it as JSON. A publish failure is logged but never stops the
// sending actor; only a failure of the wrapped sink does.
type publishSink[T any] struct {
	inner  pipeline.Sink[T]
	client mqtt.Client
	topic  string
}

func (s publishSink[T]) Send(v T) error {
	if payload, err := json.Marshal(v); err != nil {
		log.Printf("pipeline: marshal error (%s): %v", s.topic, err)
	} else if token := s.client.Publish(s.topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("pipeline: publish error (%s): %v", s.topic, token.Error())
	}
	return s.inner.Send(v)
}

// flightPipeline is the running set of actors between the three raw sample
// sources and the fused pose topic.
type flightPipeline struct {
	fanIn chan fusion.SensorInput
	fused chan orientation.Pose

	accel, gyro, mag *pipeline.Actor
	fuse             *pipeline.Actor

	pubDone chan struct{}
}

// startPipeline spawns the three per-sensor actors, the fan-in fold actor
// and the fused pose publisher. The per-sensor actors scale raw counts to
// physical units with the given sensitivities, publish the processed value
// on its own topic and deliver it into the shared fan-in channel.
func startPipeline(
	client mqtt.Client,
	cfg *config.Config,
	accelSrc pipeline.Source[imu.RawAccel],
	gyroSrc pipeline.Source[imu.RawGyro],
	magSrc pipeline.Source[imu.RawMag],
	lsbPerG, lsbPerDps, lsbPerUT float64,
) *flightPipeline {
	p := &flightPipeline{
		fanIn:   make(chan fusion.SensorInput),
		fused:   make(chan orientation.Pose),
		pubDone: make(chan struct{}),
	}

	p.accel = pipeline.Spawn("accel",
		accelSrc,
		publishSink[imu.ProcessedAccel]{inner: fusion.AccelSink{C: p.fanIn}, client: client, topic: cfg.TopicAccel},
		func(r imu.RawAccel) imu.ProcessedAccel { return imu.NewProcessedAccel(r, lsbPerG) })

	p.gyro = pipeline.Spawn("gyro",
		gyroSrc,
		publishSink[imu.ProcessedGyro]{inner: fusion.GyroSink{C: p.fanIn}, client: client, topic: cfg.TopicGyro},
		func(r imu.RawGyro) imu.ProcessedGyro { return imu.NewProcessedGyro(r, lsbPerDps) })

	p.mag = pipeline.Spawn("mag",
		magSrc,
		publishSink[imu.ProcessedMag]{inner: fusion.MagSink{C: p.fanIn}, client: client, topic: cfg.TopicMag},
		func(r imu.RawMag) imu.ProcessedMag { return imu.NewProcessedMag(r, lsbPerUT) })

	dt := float64(cfg.IMUSampleInterval) / 1000.0
	p.fuse = fusion.Spawn(orientation.Pose{}, newPoseFold(dt),
		pipeline.SourceOf(p.fanIn), pipeline.SinkOf(p.fused))

	go func() {
		defer close(p.pubDone)
		for pose := range p.fused {
			payload, err := json.Marshal(pose)
			if err != nil {
				log.Printf("pipeline: pose marshal error: %v", err)
				continue
			}
			if token := client.Publish(cfg.TopicPoseFused, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("pipeline: publish error (%s): %v", cfg.TopicPoseFused, token.Error())
			}
		}
	}()

	return p
}

// join waits for the whole pipeline to drain after the upstream sources
// have been closed: first the three per-sensor actors, then the fan-in is
// closed so the fusion actor stops, then the publisher. The first actor
// failure, if any, is returned.
func (p *flightPipeline) join() error {
	var g errgroup.Group
	g.Go(p.accel.Wait)
	g.Go(p.gyro.Wait)
	g.Go(p.mag.Wait)
	err := g.Wait()

	close(p.fanIn)
	if ferr := p.fuse.Wait(); err == nil {
		err = ferr
	}

	close(p.fused)
	<-p.pubDone
	return err
}
