package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDFC      string
	MQTTClientIDGPS     string
	MQTTClientIDEnv     string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string

	// Topics
	TopicPoseFused string
	TopicAccel     string
	TopicGyro      string
	TopicMag       string
	TopicIMURaw    string
	TopicGPS       string
	TopicEnv       string

	// IMU hardware
	IMUI2CBus  string // periph bus name, "" selects the first available
	IMUI2CAddr uint16
	MagI2CAddr uint16

	// IMU sensor configuration
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange     byte
	IMUSampleRateDiv byte // output rate = internal 1kHz / (1 + div)
	IMUDLPFConfig    byte // low-pass filter selector (0-7)

	// Magnetometer configuration
	MagODR  byte // output data rate code (0-6)
	MagAvg  byte // averaging code (0-3)
	MagGain byte // gain code (0-7)

	// BMP hardware
	BMPSPIDevice string

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Timing
	IMUSampleInterval int // milliseconds
	EnvSampleInterval int // milliseconds

	// Web server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level singleton, set once through InitGlobal and read through
// Get. The RWMutex lets concurrent readers share the lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

func defaults() *Config {
	return &Config{
		MQTTClientIDFC:      "flight-fc-producer",
		MQTTClientIDGPS:     "flight-gps-producer",
		MQTTClientIDEnv:     "flight-env-producer",
		MQTTClientIDConsole: "flight-console-subscriber",
		MQTTClientIDWeb:     "flight-web-subscriber",
		MQTTClientIDDisplay: "flight-display-subscriber",

		TopicPoseFused: "flight/pose/fused",
		TopicAccel:     "flight/accel",
		TopicGyro:      "flight/gyro",
		TopicMag:       "flight/mag",
		TopicIMURaw:    "flight/imu/raw",
		TopicGPS:       "flight/gps",
		TopicEnv:       "flight/env",

		IMUI2CAddr: 0x68,
		MagI2CAddr: 0x1E,

		IMUSampleRateDiv: 199,
		IMUDLPFConfig:    0x06,

		MagODR:  4,
		MagGain: 1,

		GPSSerialPort: "/dev/serial0",
		GPSBaudRate:   9600,

		EnvSampleInterval: 1000,

		WebServerPort: 8080,

		DisplayUpdateInterval: 250,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseByte(key, value string, max int) (byte, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < 0 || v > max {
		return 0, fmt.Errorf("%s must be 0-%d, got %d", key, max, v)
	}
	return byte(v), nil
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint16(addr), nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_FC":
		c.MQTTClientIDFC = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_ENV":
		c.MQTTClientIDEnv = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_POSE_FUSED":
		c.TopicPoseFused = value
	case "TOPIC_ACCEL":
		c.TopicAccel = value
	case "TOPIC_GYRO":
		c.TopicGyro = value
	case "TOPIC_MAG":
		c.TopicMag = value
	case "TOPIC_IMU_RAW":
		c.TopicIMURaw = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_ENV":
		c.TopicEnv = value

	// IMU hardware
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		c.IMUI2CAddr, err = parseAddr(key, value)
	case "MAG_I2C_ADDR":
		c.MagI2CAddr, err = parseAddr(key, value)

	// IMU sensor configuration
	case "IMU_ACCEL_RANGE":
		c.IMUAccelRange, err = parseByte(key, value, 3)
	case "IMU_GYRO_RANGE":
		c.IMUGyroRange, err = parseByte(key, value, 3)
	case "IMU_SMPLRT_DIV":
		c.IMUSampleRateDiv, err = parseByte(key, value, 255)
	case "IMU_DLPF_CFG":
		c.IMUDLPFConfig, err = parseByte(key, value, 7)

	// Magnetometer configuration
	case "MAG_ODR":
		c.MagODR, err = parseByte(key, value, 6)
	case "MAG_AVG":
		c.MagAvg, err = parseByte(key, value, 3)
	case "MAG_GAIN":
		c.MagGain, err = parseByte(key, value, 7)

	// BMP hardware
	case "BMP_SPI_DEVICE":
		c.BMPSPIDevice = value

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value)

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		c.IMUSampleInterval, err = parseInt(key, value)
	case "ENV_SAMPLE_INTERVAL":
		c.EnvSampleInterval, err = parseInt(key, value)

	// Web server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.IMUSampleInterval == 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Runs at most
// once; later calls are no-ops.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must have been
// called first, or this returns nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
