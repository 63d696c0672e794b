package app

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/flight_computer/internal/config"
	"github.com/relabs-tech/flight_computer/internal/sensors"
)

// RunEnvProducer samples the BMP barometer on a fixed tick and publishes
// the readings to MQTT.
func RunEnvProducer() error {
	log.Println("starting environment producer (BMP → MQTT)")

	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDEnv)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("env producer connected to MQTT broker at %s", cfg.MQTTBroker)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.EnvSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Println("env producer shutting down")
			return nil

		case <-ticker.C:
			sample, err := sensors.ReadEnv()
			if err != nil {
				log.Printf("env read error: %v", err)
				continue
			}

			payload, err := json.Marshal(sample)
			if err != nil {
				log.Printf("env marshal error: %v", err)
				continue
			}

			if token := client.Publish(cfg.TopicEnv, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("env publish error: %v", token.Error())
			}
		}
	}
}
