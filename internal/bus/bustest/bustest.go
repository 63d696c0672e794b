// Package bustest provides a scripted register-bus double for driver tests.
package bustest

import (
	"bytes"
	"testing"
)

// Op is one expected bus transaction.
type Op struct {
	// Write holds the exact bytes the device under test must write.
	// Nil means this op is a read.
	Write []byte
	// Data is copied into the caller's buffer on a read op. Its length must
	// match the read buffer.
	Data []byte
	// Err is returned from the transaction after the checks above.
	Err error
}

// WriteOp scripts a write of exactly p.
func WriteOp(p ...byte) Op { return Op{Write: p} }

// ReadOp scripts a read returning data.
func ReadOp(data ...byte) Op { return Op{Data: data} }

// FailWrite scripts a write of exactly p that fails with err.
func FailWrite(err error, p ...byte) Op { return Op{Write: p, Err: err} }

// FailRead scripts a read that fails with err.
func FailRead(err error) Op { return Op{Data: []byte{}, Err: err} }

// Bus replays a fixed script of transactions and fails the test on any
// deviation in order, direction, or written bytes.
type Bus struct {
	t   *testing.T
	ops []Op
	pos int
}

// New returns a Bus that expects exactly the given ops, in order.
func New(t *testing.T, ops ...Op) *Bus {
	t.Helper()
	return &Bus{t: t, ops: ops}
}

func (b *Bus) next(dir string) Op {
	b.t.Helper()
	if b.pos >= len(b.ops) {
		b.t.Fatalf("unexpected %s: script exhausted after %d ops", dir, len(b.ops))
	}
	op := b.ops[b.pos]
	b.pos++
	return op
}

func (b *Bus) Write(p []byte) error {
	b.t.Helper()
	op := b.next("write")
	if op.Write == nil {
		b.t.Fatalf("op %d: expected read, got write of % #x", b.pos-1, p)
	}
	if !bytes.Equal(p, op.Write) {
		b.t.Fatalf("op %d: wrote % #x, want % #x", b.pos-1, p, op.Write)
	}
	return op.Err
}

func (b *Bus) Read(p []byte) error {
	b.t.Helper()
	op := b.next("read")
	if op.Write != nil {
		b.t.Fatalf("op %d: expected write of % #x, got read of %d bytes", b.pos-1, op.Write, len(p))
	}
	if op.Err != nil {
		return op.Err
	}
	if len(p) != len(op.Data) {
		b.t.Fatalf("op %d: read of %d bytes, scripted %d", b.pos-1, len(p), len(op.Data))
	}
	copy(p, op.Data)
	return nil
}

// Done fails the test if scripted ops remain unconsumed.
func (b *Bus) Done() {
	b.t.Helper()
	if b.pos != len(b.ops) {
		b.t.Fatalf("script not exhausted: %d of %d ops consumed", b.pos, len(b.ops))
	}
}
