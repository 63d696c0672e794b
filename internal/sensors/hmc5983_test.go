package sensors

import (
	"errors"
	"testing"

	"github.com/relabs-tech/flight_computer/internal/bus/bustest"
)

func TestNewHMC5983WritesConfiguration(t *testing.T) {
	cfg := DefaultHMCConfig()
	b := bustest.New(t,
		bustest.WriteOp(0x0A),
		bustest.ReadOp('H', '4', '3'),
		bustest.WriteOp(0x00, cfg.Avg<<5|cfg.ODR<<2, cfg.Gain<<5, 0x00),
	)

	if _, err := NewHMC5983(b, cfg); err != nil {
		t.Fatalf("NewHMC5983: %v", err)
	}
	b.Done()
}

func TestNewHMC5983IdentityMismatch(t *testing.T) {
	b := bustest.New(t,
		bustest.WriteOp(0x0A),
		bustest.ReadOp('X', '4', '3'),
	)

	_, err := NewHMC5983(b, DefaultHMCConfig())
	if !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("err = %v, want ErrIdentityMismatch", err)
	}
	b.Done()
}

func TestHMC5983ReadRawAxisOrder(t *testing.T) {
	cfg := DefaultHMCConfig()
	b := bustest.New(t,
		bustest.WriteOp(0x0A),
		bustest.ReadOp('H', '4', '3'),
		bustest.WriteOp(0x00, cfg.Avg<<5|cfg.ODR<<2, cfg.Gain<<5, 0x00),
		bustest.WriteOp(0x03),
		bustest.ReadOp(
			0x00, 0x01, // X = 1
			0x00, 0x03, // Z = 3 (device emits X, Z, Y)
			0xFF, 0xFE, // Y = -2
		),
	)

	h, err := NewHMC5983(b, cfg)
	if err != nil {
		t.Fatalf("NewHMC5983: %v", err)
	}
	m, err := h.ReadRaw()
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if m.X != 1 || m.Y != -2 || m.Z != 3 {
		t.Errorf("mag = (%d, %d, %d), want (1, -2, 3)", m.X, m.Y, m.Z)
	}
	b.Done()
}

func TestHMC5983Sensitivity(t *testing.T) {
	cfg := DefaultHMCConfig() // gain code 1: 1090 LSB/Ga
	b := bustest.New(t,
		bustest.WriteOp(0x0A),
		bustest.ReadOp('H', '4', '3'),
		bustest.WriteOp(0x00, cfg.Avg<<5|cfg.ODR<<2, cfg.Gain<<5, 0x00),
	)
	h, err := NewHMC5983(b, cfg)
	if err != nil {
		t.Fatalf("NewHMC5983: %v", err)
	}
	if got := h.LSBPerUT(); got != 10.9 {
		t.Errorf("LSBPerUT() = %v, want 10.9", got)
	}
	b.Done()
}
