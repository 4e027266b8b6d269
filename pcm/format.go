// Package pcm provides buffers of raw interleaved PCM bytes with
// timestamp-to-byte seeking and conversion to non-interleaved signals.
package pcm

import (
	"fmt"

	"github.com/pipelined/loopmix/signal"
)

// Format describes a raw interleaved PCM stream.
type Format struct {
	SampleRate  int
	NumChannels int
	BitDepth    signal.BitDepth
}

// BytesPerSample returns the size of a single frame: one sample for
// every channel.
func (f Format) BytesPerSample() int {
	return f.NumChannels * int(f.BitDepth) / 8
}

// BytesPerSecond returns the byte rate of the stream.
func (f Format) BytesPerSecond() int {
	return f.BytesPerSample() * f.SampleRate
}

// Validate returns a FormatError if the format is degenerate or uses an
// unsupported bit depth. Only 16 and 32 bit alignments are defined.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return &FormatError{Format: f, Reason: "non-positive sample rate"}
	}
	if f.NumChannels <= 0 {
		return &FormatError{Format: f, Reason: "non-positive channel count"}
	}
	switch f.BitDepth {
	case signal.BitDepth16, signal.BitDepth32:
	default:
		return &FormatError{Format: f, Reason: fmt.Sprintf("unsupported bit depth %d", f.BitDepth)}
	}
	return nil
}

// FormatError is returned when a stream format cannot be used: zero
// bytes per second or an unsupported bit depth.
type FormatError struct {
	Format Format
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format %d Hz/%d ch/%d bit: %s",
		e.Format.SampleRate, e.Format.NumChannels, e.Format.BitDepth, e.Reason)
}

// AlignmentError is returned when an offset or data length cannot be
// split into whole sample frames.
type AlignmentError struct {
	Size           int
	BytesPerSample int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%d bytes do not align to %d-byte samples", e.Size, e.BytesPerSample)
}
