// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pipeline

import (
	"time"
)

// SynthSource generates smoothly varying samples at a fixed cadence, for
// bench runs without hardware and for the mock producer.
type SynthSource[T any] struct {
	start    time.Time
	interval time.Duration
	gen      func(elapsed float64) T
	stop     chan struct{}
}

// NewSynthSource returns a source that emits gen(seconds since start) every
// interval until Close is called.
func NewSynthSource[T any](interval time.Duration, gen func(elapsed float64) T) *SynthSource[T] {
	return &SynthSource[T]{
		start:    time.Now(),
		interval: interval,
		gen:      gen,
		stop:     make(chan struct{}),
	}
}

// Next waits one interval and produces the next sample, or returns
// ErrClosed once the source has been closed.
func (s *SynthSource[T]) Next() (T, error) {
	select {
	case <-s.stop:
		var zero T
		return zero, ErrClosed
	case <-time.After(s.interval):
		return s.gen(time.Since(s.start).Seconds()), nil
	}
}

// Close stops the source; the next call to Next returns ErrClosed.
func (s *SynthSource[T]) Close() {
	close(s.stop)
}
