// Package mock provides test doubles for effects and playback streams.
package mock

import (
	"sync"

	"github.com/pipelined/loopmix/signal"
)

// Effect is a scriptable effect double. It records every processed
// signal and reports done after DoneAfter Process calls.
type Effect struct {
	// DoneAfter is the number of Process calls until Done reports true.
	DoneAfter int
	// Gain is applied to every sample, 1 when zero.
	Gain float64

	Steps     int
	Processed []signal.Float64
}

// Process records the signal, applies the gain and steps once.
func (e *Effect) Process(floats signal.Float64) signal.Float64 {
	e.Processed = append(e.Processed, floats)
	gain := e.Gain
	if gain == 0 {
		gain = 1
	}
	out := make([][]float64, floats.NumChannels())
	for i := range floats {
		out[i] = make([]float64, len(floats[i]))
		for j := range floats[i] {
			out[i][j] = floats[i][j] * gain
		}
	}
	e.Step()
	return out
}

// Step counts progression steps.
func (e *Effect) Step() {
	e.Steps++
}

// Done reports whether DoneAfter steps have passed.
func (e *Effect) Done() bool {
	return e.Steps >= e.DoneAfter
}

// Stream captures everything a player writes to it.
type Stream struct {
	mu      sync.Mutex
	started bool
	stopped bool
	closed  bool
	writes  [][]float32

	// WriteErr is returned by every Write when set.
	WriteErr error
}

// Start marks the stream started.
func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

// Write records a copy of the samples.
func (s *Stream) Write(samples []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	write := make([]float32, len(samples))
	copy(write, samples)
	s.writes = append(s.writes, write)
	return nil
}

// Stop marks the stream stopped.
func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

// Close marks the stream closed.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Started reports whether Start was called.
func (s *Stream) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Writes returns the recorded writes.
func (s *Stream) Writes() [][]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	writes := make([][]float32, len(s.writes))
	copy(writes, s.writes)
	return writes
}

// Samples returns all written samples concatenated.
func (s *Stream) Samples() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var samples []float32
	for _, write := range s.writes {
		samples = append(samples, write...)
	}
	return samples
}
