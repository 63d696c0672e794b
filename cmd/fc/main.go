// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/flight_computer/internal/app"
	"github.com/relabs-tech/flight_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./flight_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting flight-computer producer (IMU + mag → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunFlightProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
