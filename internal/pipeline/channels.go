package pipeline

// ChannelSource adapts a receive channel to the Source capability. Closing
// the channel is the cancellation signal: Next returns ErrClosed and the
// consuming actor stops cleanly.
type ChannelSource[T any] struct {
	C <-chan T
}

// SourceOf wraps c as a Source.
func SourceOf[T any](c <-chan T) ChannelSource[T] {
	return ChannelSource[T]{C: c}
}

// Next blocks until a value arrives or the channel is closed.
func (s ChannelSource[T]) Next() (T, error) {
	v, ok := <-s.C
	if !ok {
		var zero T
		return zero, ErrClosed
	}
	return v, nil
}

// ChannelSink adapts a send channel to the Sink capability. The channel's
// own synchronization is what makes concurrent sends from multiple actors
// safe. Ownership of closing stays with the orchestrator, never a sender.
type ChannelSink[T any] struct {
	C chan<- T
}

// SinkOf wraps c as a Sink.
func SinkOf[T any](c chan<- T) ChannelSink[T] {
	return ChannelSink[T]{C: c}
}

// Send delivers one value, blocking until the receiver takes it.
func (s ChannelSink[T]) Send(v T) error {
	s.C <- v
	return nil
}
