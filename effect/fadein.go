package effect

import (
	"math"

	"github.com/pipelined/loopmix/signal"
)

const (
	fadeInStartDB = -30.0
	fadeInStepDB  = 10.0
)

// FadeIn ramps a clip up from silence to unity gain, one bar at a time.
// Each processed bar covers one gain step: with a -30 dB start and 10 dB
// steps the fade completes after exactly three bars.
type FadeIn struct {
	gainDB      float64
	incrementDB float64
	backend     Backend
}

// FadeInOption configures a fade-in.
type FadeInOption func(*FadeIn)

// WithBackend selects the compute backend for the ramp transform.
func WithBackend(b Backend) FadeInOption {
	return func(f *FadeIn) {
		f.backend = b
	}
}

// NewFadeIn creates a fade-in in its initial state.
func NewFadeIn(options ...FadeInOption) *FadeIn {
	f := &FadeIn{
		gainDB:      fadeInStartDB,
		incrementDB: fadeInStepDB,
		backend:     hostBackend{},
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Step raises the gain one increment, never above 0 dB.
func (f *FadeIn) Step() {
	f.gainDB += f.incrementDB
	if f.gainDB > 0 {
		f.gainDB = 0
	}
}

// Done reports whether the fade has reached unity gain.
func (f *FadeIn) Done() bool {
	return f.gainDB >= 0
}

// GainDB returns the current gain level in decibels.
func (f *FadeIn) GainDB() float64 {
	return f.gainDB
}

// Process scales the bar with a linear amplitude ramp spanning one gain
// step, the same ramp on every channel, then steps the gain.
func (f *FadeIn) Process(floats signal.Float64) signal.Float64 {
	start := ratio(f.gainDB)
	endDB := f.gainDB + f.incrementDB
	if endDB > 0 {
		endDB = 0
	}
	ramp := f.backend.Ramp(start, ratio(endDB), floats.Size())
	out := f.backend.Scale(floats, ramp)
	f.Step()
	return out
}

// ratio converts decibels to an amplitude multiplier.
func ratio(db float64) float64 {
	return math.Pow(10, db/20)
}
