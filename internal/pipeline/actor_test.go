package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestActorDeliversInOrder(t *testing.T) {
	in := make(chan int, 5)
	for i := 1; i <= 5; i++ {
		in <- i
	}
	close(in)

	out := make(chan int, 5)
	a := Spawn("test", SourceOf(in), SinkOf(out), func(v int) int { return v * 10 })

	if err := a.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	close(out)

	var got []int
	for v := range out {
		got = append(got, v)
	}
	want := []int{10, 20, 30, 40, 50}
	if len(got) != len(want) {
		t.Fatalf("delivered %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

type failingSource struct {
	values []int
	err    error
}

func (s *failingSource) Next() (int, error) {
	if len(s.values) == 0 {
		return 0, s.err
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, nil
}

func TestActorStopsOnSourceError(t *testing.T) {
	errRead := errors.New("transport failure")
	src := &failingSource{values: []int{1, 2}, err: errRead}
	out := make(chan int, 2)

	a := Spawn("test", src, SinkOf(out), func(v int) int { return v })
	if err := a.Wait(); !errors.Is(err, errRead) {
		t.Fatalf("Wait = %v, want %v", err, errRead)
	}
	if len(out) != 2 {
		t.Errorf("delivered %d samples before failing, want 2", len(out))
	}
}

type failingSink struct {
	err error
}

func (s failingSink) Send(int) error { return s.err }

func TestActorStopsOnSinkError(t *testing.T) {
	in := make(chan int, 1)
	in <- 7

	errSend := errors.New("delivery failure")
	a := Spawn("test", SourceOf(in), failingSink{err: errSend}, func(v int) int { return v })
	if err := a.Wait(); !errors.Is(err, errSend) {
		t.Fatalf("Wait = %v, want %v", err, errSend)
	}
}

func TestActorCleanStopOnClose(t *testing.T) {
	in := make(chan int)
	out := make(chan int, 1)

	a := Spawn("test", SourceOf(in), SinkOf(out), func(v int) int { return v })
	close(in)

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("actor did not stop after source close")
	}
	if err := a.Err(); err != nil {
		t.Errorf("Err = %v, want nil after clean close", err)
	}
}

func TestSynthSourceClose(t *testing.T) {
	src := NewSynthSource(time.Millisecond, func(elapsed float64) float64 { return elapsed })
	if _, err := src.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	src.Close()
	if _, err := src.Next(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Next after Close = %v, want ErrClosed", err)
	}
}
