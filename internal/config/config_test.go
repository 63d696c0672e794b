package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flight_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
# flight computer config
MQTT_BROKER=tcp://localhost:1883
IMU_SAMPLE_INTERVAL=200
IMU_ACCEL_RANGE=1
IMU_GYRO_RANGE=2
IMU_SMPLRT_DIV=9
IMU_I2C_ADDR=0x68
MAG_GAIN=3
GPS_SERIAL_PORT=/dev/serial0
GPS_BAUD_RATE=9600
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.IMUSampleInterval != 200 {
		t.Errorf("IMUSampleInterval = %d, want 200", cfg.IMUSampleInterval)
	}
	if cfg.IMUAccelRange != 1 || cfg.IMUGyroRange != 2 || cfg.IMUSampleRateDiv != 9 {
		t.Errorf("IMU config = %d/%d/%d", cfg.IMUAccelRange, cfg.IMUGyroRange, cfg.IMUSampleRateDiv)
	}
	if cfg.IMUI2CAddr != 0x68 {
		t.Errorf("IMUI2CAddr = 0x%X, want 0x68", cfg.IMUI2CAddr)
	}
	if cfg.MagGain != 3 {
		t.Errorf("MagGain = %d, want 3", cfg.MagGain)
	}
	// Untouched keys keep their defaults.
	if cfg.TopicPoseFused != "flight/pose/fused" {
		t.Errorf("TopicPoseFused = %q", cfg.TopicPoseFused)
	}
	if cfg.IMUDLPFConfig != 0x06 {
		t.Errorf("IMUDLPFConfig = %d, want 6", cfg.IMUDLPFConfig)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"unknown key", "NOPE=1", "unknown config key"},
		{"range too large", "IMU_ACCEL_RANGE=4", "must be 0-3"},
		{"dlpf too large", "IMU_DLPF_CFG=8", "must be 0-7"},
		{"not a number", "GPS_BAUD_RATE=fast", "invalid GPS_BAUD_RATE"},
		{"malformed line", "JUST_A_KEY", "invalid config line"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, "MQTT_BROKER=tcp://localhost:1883\nIMU_SAMPLE_INTERVAL=200\n"+tc.line+"\n")
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestLoadRequiredFields(t *testing.T) {
	path := writeConfig(t, "IMU_SAMPLE_INTERVAL=200\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "MQTT_BROKER") {
		t.Fatalf("Load error = %v, want missing MQTT_BROKER", err)
	}

	path = writeConfig(t, "MQTT_BROKER=tcp://localhost:1883\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "IMU_SAMPLE_INTERVAL") {
		t.Fatalf("Load error = %v, want missing IMU_SAMPLE_INTERVAL", err)
	}
}
