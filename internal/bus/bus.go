// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bus provides byte-level access to register-addressed devices and
// the block-read protocol built on top of it.
package bus

// Bus is the byte-level capability a register-addressed device hangs off.
// Implementations report transport failures unchanged; no retries happen at
// this layer.
type Bus interface {
	Write(p []byte) error
	Read(p []byte) error
}

// ReadRegisterBlock reads len(buf) contiguous registers from b, starting at
// reg, as one logical transaction: a single write of the register address
// followed by a single read filling buf. The MPU family latches measurement
// registers for the duration of a contiguous read, so splitting a multi-byte
// value into single-register reads can splice bytes from two sampling
// instants.
//
// If the write fails the read is never issued and the write's error is
// returned. On any error buf may hold stale or partial bytes and must be
// discarded by the caller.
func ReadRegisterBlock(b Bus, reg byte, buf []byte) error {
	if err := b.Write([]byte{reg}); err != nil {
		return err
	}
	return b.Read(buf)
}

// WriteRegister writes values to b starting at reg, as a single bus write.
// Devices with auto-incrementing register pointers take this as a burst
// write of len(values) consecutive registers.
func WriteRegister(b Bus, reg byte, values ...byte) error {
	return b.Write(append([]byte{reg}, values...))
}
