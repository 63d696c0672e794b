package bus

import (
	"bytes"
	"errors"
	"testing"

	"github.com/relabs-tech/flight_computer/internal/bus/bustest"
)

func TestReadRegisterBlock(t *testing.T) {
	want := []byte{10, 20, 30, 40, 50}
	b := bustest.New(t,
		bustest.WriteOp(0x3B),
		bustest.ReadOp(want...),
	)

	buf := make([]byte, 5)
	if err := ReadRegisterBlock(b, 0x3B, buf); err != nil {
		t.Fatalf("ReadRegisterBlock: %v", err)
	}
	if !bytes.Equal(buf, want) {
		t.Errorf("buf = % #x, want % #x", buf, want)
	}
	b.Done()
}

func TestReadRegisterBlockWriteFails(t *testing.T) {
	errWrite := errors.New("nack")
	b := bustest.New(t,
		bustest.FailWrite(errWrite, 0x75),
	)

	buf := make([]byte, 1)
	err := ReadRegisterBlock(b, 0x75, buf)
	if !errors.Is(err, errWrite) {
		t.Fatalf("err = %v, want %v", err, errWrite)
	}
	// The read must never have been attempted.
	b.Done()
}

func TestReadRegisterBlockReadFails(t *testing.T) {
	errRead := errors.New("bus timeout")
	b := bustest.New(t,
		bustest.WriteOp(0x03),
		bustest.FailRead(errRead),
	)

	buf := make([]byte, 6)
	err := ReadRegisterBlock(b, 0x03, buf)
	if !errors.Is(err, errRead) {
		t.Fatalf("err = %v, want %v", err, errRead)
	}
	b.Done()
}

func TestWriteRegister(t *testing.T) {
	b := bustest.New(t,
		bustest.WriteOp(0x19, 199, 0x06, 0x00, 0x00),
	)
	if err := WriteRegister(b, 0x19, 199, 0x06, 0x00, 0x00); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	b.Done()
}
