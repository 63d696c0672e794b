// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// I2CBus adapts one addressed device on a periph I2C bus to the Bus
// capability. The handle is owned by a single goroutine performing
// sequential transactions; it is not safe for concurrent use.
type I2CBus struct {
	dev *i2c.Dev
	bus i2c.BusCloser
}

// OpenI2C opens the named I2C bus (empty string selects the first available
// bus) and binds it to the device at addr. host.Init must have been called
// before this.
func OpenI2C(name string, addr uint16) (*I2CBus, error) {
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2c open %q: %w", name, err)
	}
	return &I2CBus{
		dev: &i2c.Dev{Bus: b, Addr: addr},
		bus: b,
	}, nil
}

// Write issues one write transaction to the device.
func (b *I2CBus) Write(p []byte) error {
	return b.dev.Tx(p, nil)
}

// Read issues one read transaction, filling p.
func (b *I2CBus) Read(p []byte) error {
	return b.dev.Tx(nil, p)
}

// Close releases the underlying bus.
func (b *I2CBus) Close() error {
	return b.bus.Close()
}
