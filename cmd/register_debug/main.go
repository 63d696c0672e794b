// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"net/http"

	"periph.io/x/host/v3"

	"github.com/relabs-tech/flight_computer/internal/app"
	"github.com/relabs-tech/flight_computer/internal/bus"
	"github.com/relabs-tech/flight_computer/internal/config"
)

func main() {
	log.Println("starting register debug tool (standalone)")

	if err := config.InitGlobal("flight_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		log.Fatalf("periph host init: %v", err)
	}

	imuBus, err := bus.OpenI2C(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	if err != nil {
		log.Fatalf("IMU bus: %v", err)
	}
	defer imuBus.Close()

	magBus, err := bus.OpenI2C(cfg.IMUI2CBus, cfg.MagI2CAddr)
	if err != nil {
		log.Fatalf("mag bus: %v", err)
	}
	defer magBus.Close()

	dbg := app.NewRegisterDebugger(imuBus, magBus)
	http.HandleFunc("/ws", dbg.HandleWS)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := ":8081"
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost:8081 in your browser")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
