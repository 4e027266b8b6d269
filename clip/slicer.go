// Package clip slices decoded loops into tempo-aligned bars and plays
// them back through an effect chain, one bar at a time.
package clip

import (
	"errors"
	"fmt"
	"math"

	"github.com/pipelined/loopmix/pcm"
)

// ErrNonPositiveTempo is returned when bpm is zero or negative.
var ErrNonPositiveTempo = errors.New("bpm must be positive")

// ErrNonPositiveBeats is returned when the beat count is zero or negative.
var ErrNonPositiveBeats = errors.New("beat count must be positive")

// DefaultBeatsPerBar is the number of beats in one bar.
const DefaultBeatsPerBar = 4

// RemainderPolicy defines what the slicer does with a trailing chunk
// shorter than a whole bar.
type RemainderPolicy int

const (
	// DropRemainder discards the trailing partial bar.
	DropRemainder RemainderPolicy = iota
	// PadRemainder zero-pads the trailing partial bar to full length.
	PadRemainder
	// ErrRemainder fails the slice when a partial bar remains.
	ErrRemainder
)

// Slicer partitions a full-loop buffer into an ordered sequence of
// bar-length buffers.
type Slicer struct {
	// BeatsPerBar is the bar length in beats, DefaultBeatsPerBar when zero.
	BeatsPerBar int
	// Remainder selects the trailing partial bar handling.
	Remainder RemainderPolicy
}

// InsufficientDataError is returned when the requested beat extent
// exceeds the decoded data.
type InsufficientDataError struct {
	Need int
	Have int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("loop needs %d bytes, only %d decoded", e.Need, e.Have)
}

// PartialBarError is returned with the ErrRemainder policy when the
// extracted region does not divide into whole bars.
type PartialBarError struct {
	BytesPerBar int
	Remainder   int
}

func (e *PartialBarError) Error() string {
	return fmt.Sprintf("%d trailing bytes do not fill a %d-byte bar", e.Remainder, e.BytesPerBar)
}

// Slice partitions the first totalBeats beats of the loop into bars.
// Bar 0 is the first musical bar. Every bar owns a copy of its bytes and
// shares the source format.
func (s Slicer) Slice(loop *pcm.Buffer, bpm float64, totalBeats int) ([]*pcm.Buffer, error) {
	if bpm <= 0 {
		return nil, ErrNonPositiveTempo
	}
	if totalBeats <= 0 {
		return nil, ErrNonPositiveBeats
	}
	beatsPerBar := s.BeatsPerBar
	if beatsPerBar == 0 {
		beatsPerBar = DefaultBeatsPerBar
	}

	format := loop.Format()
	samplesPerBeat := int(math.Round(60.0 / bpm * float64(format.SampleRate)))
	bytesPerSample := format.BytesPerSample()
	bytesPerBar := beatsPerBar * samplesPerBeat * bytesPerSample
	totalBytes := samplesPerBeat * bytesPerSample * totalBeats

	data := loop.Bytes()
	if totalBytes > len(data) {
		return nil, &InsufficientDataError{Need: totalBytes, Have: len(data)}
	}
	data = data[:totalBytes]

	bars := make([]*pcm.Buffer, 0, (totalBytes+bytesPerBar-1)/bytesPerBar)
	for start := 0; start < len(data); start += bytesPerBar {
		end := start + bytesPerBar
		if end > len(data) {
			switch s.Remainder {
			case PadRemainder:
				end = len(data)
			case ErrRemainder:
				return nil, &PartialBarError{BytesPerBar: bytesPerBar, Remainder: len(data) - start}
			default:
				return bars, nil
			}
		}
		chunk := make([]byte, bytesPerBar)
		copy(chunk, data[start:end])
		bar, err := pcm.New(chunk, format)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
