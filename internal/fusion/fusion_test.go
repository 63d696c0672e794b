package fusion

import (
	"sync"
	"testing"

	"github.com/relabs-tech/flight_computer/internal/imu"
	"github.com/relabs-tech/flight_computer/internal/pipeline"
)

// recordFold appends the input's kind, copying so each forwarded
// accumulator is an independent snapshot.
func recordFold(acc []Kind, in SensorInput) []Kind {
	out := make([]Kind, len(acc)+1)
	copy(out, acc)
	out[len(acc)] = in.Kind
	return out
}

func TestFusionFoldsInDeliveryOrder(t *testing.T) {
	// Interleaving is an input parameter, not an assumption: the same
	// checks must hold for any arrival order.
	interleavings := map[string][]Kind{
		"round_robin":   {KindAccel, KindGyro, KindMag, KindAccel, KindGyro, KindMag},
		"bursty":        {KindAccel, KindAccel, KindAccel, KindGyro, KindMag, KindMag},
		"one_dominates": {KindGyro, KindGyro, KindGyro, KindGyro, KindAccel, KindGyro},
		"single_kind":   {KindMag, KindMag, KindMag},
	}

	for name, order := range interleavings {
		t.Run(name, func(t *testing.T) {
			fanIn := make(chan SensorInput)
			out := make(chan []Kind, len(order))

			a := Spawn(nil, recordFold, pipeline.SourceOf(fanIn), pipeline.SinkOf(out))

			go func() {
				for _, k := range order {
					switch k {
					case KindAccel:
						fanIn <- AccelInput(imu.ProcessedAccel{})
					case KindGyro:
						fanIn <- GyroInput(imu.ProcessedGyro{})
					case KindMag:
						fanIn <- MagInput(imu.ProcessedMag{})
					}
				}
				close(fanIn)
			}()

			if err := a.Wait(); err != nil {
				t.Fatalf("Wait: %v", err)
			}
			close(out)

			var accs [][]Kind
			for acc := range out {
				accs = append(accs, acc)
			}
			if len(accs) != len(order) {
				t.Fatalf("got %d accumulator values, want %d", len(accs), len(order))
			}
			// The i-th accumulator must equal the left fold of the first
			// i+1 inputs: exactly once per input, in delivery order.
			for i, acc := range accs {
				if len(acc) != i+1 {
					t.Fatalf("accumulator %d has %d entries, want %d", i, len(acc), i+1)
				}
				for j := 0; j <= i; j++ {
					if acc[j] != order[j] {
						t.Errorf("accumulator %d entry %d = %v, want %v", i, j, acc[j], order[j])
					}
				}
			}
		})
	}
}

func TestFusionFanInFromConcurrentProducers(t *testing.T) {
	const perProducer = 50

	fanIn := make(chan SensorInput)
	out := make(chan []Kind, 3*perProducer)

	a := Spawn(nil, recordFold, pipeline.SourceOf(fanIn), pipeline.SinkOf(out))

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		s := AccelSink{C: fanIn}
		for i := 0; i < perProducer; i++ {
			s.Send(imu.ProcessedAccel{X: float64(i)})
		}
	}()
	go func() {
		defer wg.Done()
		s := GyroSink{C: fanIn}
		for i := 0; i < perProducer; i++ {
			s.Send(imu.ProcessedGyro{X: float64(i)})
		}
	}()
	go func() {
		defer wg.Done()
		s := MagSink{C: fanIn}
		for i := 0; i < perProducer; i++ {
			s.Send(imu.ProcessedMag{X: float64(i)})
		}
	}()

	wg.Wait()
	close(fanIn)
	if err := a.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	close(out)

	var last []Kind
	n := 0
	for acc := range out {
		n++
		if len(acc) != n {
			t.Fatalf("accumulator %d has %d entries, want %d", n-1, len(acc), n)
		}
		last = acc
	}
	if n != 3*perProducer {
		t.Fatalf("got %d fold steps, want %d", n, 3*perProducer)
	}

	// No loss, no duplication: per-kind totals survive the interleaving.
	counts := map[Kind]int{}
	for _, k := range last {
		counts[k]++
	}
	for _, k := range []Kind{KindAccel, KindGyro, KindMag} {
		if counts[k] != perProducer {
			t.Errorf("%v inputs folded %d times, want %d", k, counts[k], perProducer)
		}
	}
}

func TestTaggedConstruction(t *testing.T) {
	in := AccelInput(imu.ProcessedAccel{X: 0.25})
	if in.Kind != KindAccel || in.Accel.X != 0.25 {
		t.Errorf("AccelInput = %+v", in)
	}
	if got := in.Kind.String(); got != "accel" {
		t.Errorf("Kind.String() = %q, want %q", got, "accel")
	}
}
