// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pipeline implements the concurrent processing stages: one-method
// source and sink capabilities, and the actor loop that pulls, transforms
// and pushes on its own goroutine.
package pipeline

import (
	"errors"
	"log"
)

// ErrClosed is returned by a source whose upstream has been closed. An
// actor treats it as a clean stop rather than a failure.
var ErrClosed = errors.New("pipeline: source closed")

// Source produces the next value, blocking until one is available. Test
// doubles substitute for real transports by implementing this.
type Source[T any] interface {
	Next() (T, error)
}

// Sink accepts one value. Delivery is synchronous; an error from Send is
// fatal to the sending actor.
type Sink[T any] interface {
	Send(T) error
}

// Actor is the handle to one running processing stage. It terminates when
// its source closes or either capability fails; termination is observable
// through Done and Err rather than a silent goroutine exit.
type Actor struct {
	name string
	done chan struct{}
	err  error
}

// Spawn starts the stage loop on its own goroutine: block on src.Next,
// apply transform, deliver to sink, repeat. The transform is the only
// stage-specific logic; it runs on the actor's goroutine only, so it may
// close over state without synchronization.
func Spawn[In, Out any](name string, src Source[In], sink Sink[Out], transform func(In) Out) *Actor {
	a := &Actor{name: name, done: make(chan struct{})}
	go func() {
		defer close(a.done)
		for {
			in, err := src.Next()
			if err != nil {
				if !errors.Is(err, ErrClosed) {
					a.err = err
					log.Printf("%s actor: source error: %v", name, err)
				}
				return
			}
			if err := sink.Send(transform(in)); err != nil {
				a.err = err
				log.Printf("%s actor: sink error: %v", name, err)
				return
			}
		}
	}()
	return a
}

// Done is closed when the actor's loop has exited.
func (a *Actor) Done() <-chan struct{} { return a.done }

// Err reports why the actor stopped: nil after a clean close of its source,
// the capability error otherwise. Valid only once Done is closed.
func (a *Actor) Err() error { return a.err }

// Wait blocks until the actor has stopped and returns Err.
func (a *Actor) Wait() error {
	<-a.done
	return a.err
}

// Name returns the name the actor was spawned with.
func (a *Actor) Name() string { return a.name }
