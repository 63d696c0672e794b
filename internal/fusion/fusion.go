// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fusion

import (
	"github.com/relabs-tech/flight_computer/internal/pipeline"
)

// Fold combines the running estimate with one more sensor input. The
// numerical algorithm is the caller's; this package only guarantees the
// fold discipline.
type Fold[A any] func(acc A, input SensorInput) A

// Spawn starts the fusion actor: starting from identity, it folds each
// input from src in delivery order and forwards every updated accumulator
// to sink.
//
// The accumulator is owned by the actor's goroutine alone. No two fold
// steps ever run concurrently, and inputs are folded exactly once each, in
// the order the source delivers them; interleaving across the upstream
// producers is whatever the fan-in channel happened to see.
func Spawn[A any](identity A, fold Fold[A], src pipeline.Source[SensorInput], sink pipeline.Sink[A]) *pipeline.Actor {
	acc := identity
	return pipeline.Spawn("fusion", src, sink, func(in SensorInput) A {
		acc = fold(acc, in)
		return acc
	})
}
