// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/flight_computer/internal/bus"
	"github.com/relabs-tech/flight_computer/internal/sensors"
)

// RegisterDebugger exposes raw register access to both devices over a
// WebSocket, for bring-up and tuning. The mutex serializes bus access
// across connections.
type RegisterDebugger struct {
	mu  sync.Mutex
	imu bus.Bus
	mag bus.Bus
}

// NewRegisterDebugger wraps the two device handles.
func NewRegisterDebugger(imuBus, magBus bus.Bus) *RegisterDebugger {
	return &RegisterDebugger{imu: imuBus, mag: magBus}
}

// registerDebugSession holds WebSocket connection state for one client.
type registerDebugSession struct {
	conn *websocket.Conn
	dbg  *RegisterDebugger
}

// RegisterResponse is the single response schema for all actions.
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "error"
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
}

// RegisterConfigFile is the JSON structure for exported register dumps.
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// HandleWS handles the WebSocket connection for register debugging.
func (d *RegisterDebugger) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &registerDebugSession{conn: conn, dbg: d}

	// Send the IMU register map on connection.
	if err := session.sendRegisterMap("mpu9150"); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var rawMsg map[string]interface{}
		err := conn.ReadJSON(&rawMsg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			break
		}

		action, ok := rawMsg["action"].(string)
		if !ok {
			session.sendError("missing or invalid action field")
			continue
		}

		switch action {
		case "get_map":
			device, _ := rawMsg["device"].(string)
			if device == "" {
				device = "mpu9150"
			}
			session.sendRegisterMap(device)
		case "read":
			session.handleRead(rawMsg)
		case "read_all":
			session.handleReadAll(rawMsg)
		case "write":
			session.handleWrite(rawMsg)
		case "export_config":
			session.handleExportConfig(rawMsg)
		default:
			session.sendError(fmt.Sprintf("unknown action: %s", action))
		}
	}
}

func (d *RegisterDebugger) deviceBus(device string) (bus.Bus, error) {
	switch device {
	case "", "mpu9150":
		return d.imu, nil
	case "hmc5983":
		return d.mag, nil
	}
	return nil, fmt.Errorf("unknown device: %s", device)
}

func (d *RegisterDebugger) readRegister(device string, addr byte) (byte, error) {
	b, err := d.deviceBus(device)
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf [1]byte
	if err := bus.ReadRegisterBlock(b, addr, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *RegisterDebugger) writeRegister(device string, addr, value byte) error {
	b, err := d.deviceBus(device)
	if err != nil {
		return err
	}
	if !isRegisterWritable(device, addr) {
		return fmt.Errorf("register 0x%02X is not writable on %s", addr, device)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return bus.WriteRegister(b, addr, value)
}

// readAll reads every register named in the device's register map.
func (d *RegisterDebugger) readAll(device string) (map[string]string, error) {
	regMap, err := registerMapFor(device)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(regMap))
	for _, info := range regMap {
		var addr byte
		if _, err := fmt.Sscanf(info.Address, "0x%X", &addr); err != nil {
			continue
		}
		value, err := d.readRegister(device, addr)
		if err != nil {
			return nil, fmt.Errorf("read 0x%02X: %w", addr, err)
		}
		out[info.Address] = fmt.Sprintf("0x%02X", value)
	}
	return out, nil
}

// isRegisterWritable limits writes to the configuration registers; the
// measurement and identity windows stay read-only.
func isRegisterWritable(device string, addr byte) bool {
	switch device {
	case "", "mpu9150":
		return (addr >= 0x19 && addr <= 0x1C) || addr == 0x6B
	case "hmc5983":
		return addr <= 0x02
	}
	return false
}

func registerMapFor(device string) ([]sensors.RegisterInfo, error) {
	switch device {
	case "", "mpu9150":
		return sensors.MPU9150RegisterMap(), nil
	case "hmc5983":
		return sensors.HMC5983RegisterMap(), nil
	}
	return nil, fmt.Errorf("unknown device: %s", device)
}

func (s *registerDebugSession) handleRead(rawMsg map[string]interface{}) {
	device, _ := rawMsg["device"].(string)
	addr, _ := rawMsg["addr"].(string)

	if addr == "" {
		s.sendError("missing addr field")
		return
	}

	var addrByte byte
	if _, err := fmt.Sscanf(addr, "0x%X", &addrByte); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}

	value, err := s.dbg.readRegister(device, addrByte)
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Device:    device,
		Address:   addr,
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.conn.WriteJSON(resp)
}

func (s *registerDebugSession) handleReadAll(rawMsg map[string]interface{}) {
	device, _ := rawMsg["device"].(string)

	registers, err := s.dbg.readAll(device)
	if err != nil {
		s.sendError(fmt.Sprintf("read all error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Device:    device,
		Registers: registers,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.conn.WriteJSON(resp)
}

func (s *registerDebugSession) handleWrite(rawMsg map[string]interface{}) {
	device, _ := rawMsg["device"].(string)
	addr, _ := rawMsg["addr"].(string)
	valueStr, _ := rawMsg["value"].(string)

	if addr == "" || valueStr == "" {
		s.sendError("missing addr or value field")
		return
	}

	var addrByte, valueByte byte
	if _, err := fmt.Sscanf(addr, "0x%X", &addrByte); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}
	if _, err := fmt.Sscanf(valueStr, "0x%X", &valueByte); err != nil {
		s.sendError(fmt.Sprintf("invalid value format: %s", valueStr))
		return
	}

	if err := s.dbg.writeRegister(device, addrByte, valueByte); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Device:    device,
		Address:   addr,
		Value:     valueStr,
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	}
	s.conn.WriteJSON(resp)
}

func (s *registerDebugSession) handleExportConfig(rawMsg map[string]interface{}) {
	device, _ := rawMsg["device"].(string)
	if device == "" {
		device = "mpu9150"
	}

	registers, err := s.dbg.readAll(device)
	if err != nil {
		s.sendError(fmt.Sprintf("export error: %v", err))
		return
	}

	configFile := RegisterConfigFile{
		Version:   1,
		Device:    device,
		Timestamp: time.Now().Format(time.RFC3339),
		Registers: registers,
	}

	configJSON, _ := json.Marshal(configFile)
	rawResp := map[string]interface{}{
		"type":     "export_config",
		"device":   device,
		"message":  "config exported",
		"config":   string(configJSON),
		"filename": fmt.Sprintf("%s_%s_registers.json", device, time.Now().Format("20060102_150405")),
	}
	s.conn.WriteJSON(rawResp)
}

func (s *registerDebugSession) sendRegisterMap(device string) error {
	regMap, err := registerMapFor(device)
	if err != nil {
		s.sendError(err.Error())
		return nil
	}

	resp := RegisterResponse{
		Type:        "register_map",
		Device:      device,
		RegisterMap: regMap,
	}
	return s.conn.WriteJSON(resp)
}

func (s *registerDebugSession) sendError(message string) {
	resp := RegisterResponse{
		Type:    "error",
		Message: message,
	}
	s.conn.WriteJSON(resp)
}
