package sensors

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/flight_computer/internal/config"
	"github.com/relabs-tech/flight_computer/internal/env"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

var (
	bmpDev     *bmxx80.Dev
	bmpOnce    sync.Once
	bmpInitErr error
)

// initBMP initializes the BMP sensor once.
func initBMP() {
	bmpOnce.Do(func() {
		cfg := config.Get()

		if _, err := host.Init(); err != nil {
			bmpInitErr = fmt.Errorf("periph host init: %w", err)
			return
		}

		spiBus, err := spireg.Open(cfg.BMPSPIDevice)
		if err != nil {
			bmpInitErr = fmt.Errorf("BMP SPI open: %w", err)
			return
		}

		bmpDev, err = bmxx80.NewSPI(spiBus, &bmxx80.DefaultOpts)
		if err != nil {
			bmpInitErr = fmt.Errorf("BMP init: %w", err)
			return
		}
	})
}

// ReadEnv reads the BMP sensor (temperature + pressure).
func ReadEnv() (env.Sample, error) {
	initBMP()
	if bmpInitErr != nil {
		return env.Sample{}, bmpInitErr
	}

	var e physic.Env
	if err := bmpDev.Sense(&e); err != nil {
		return env.Sample{}, fmt.Errorf("BMP sense: %w", err)
	}

	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	return env.Sample{
		Temperature: e.Temperature.Celsius(),
		Pressure:    pressurePa,
		PressureHPa: pressurePa / 100.0, // 1 hPa = 100 Pa
	}, nil
}
