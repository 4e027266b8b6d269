// Package signal provides an API to manipulate digital signals. It allows to:
// 	- convert interleaved data to non-interleaved
//	- convert bit depth for int signals
package signal

import (
	"math"
	"time"
)

// Float64 is a non-interleaved float64 signal. The first dimension is
// the channel, the second the sample position within the channel.
type Float64 [][]float64

// BitDepth is the resolution of a single integer sample.
type BitDepth int

const (
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// scale returns the amplitude of the full-scale integer sample for this
// bit depth. The same value is used for int-to-float and float-to-int
// conversion, so a round trip without processing is lossless.
func (bitDepth BitDepth) scale() float64 {
	switch bitDepth {
	case BitDepth16:
		return math.MaxInt16
	case BitDepth32:
		return math.MaxInt32
	default:
		return 1
	}
}

// InterInt is an interleaved int signal.
type InterInt struct {
	Data        []int
	NumChannels int
	BitDepth
}

// DurationOf returns the time duration of the passed number of frames
// at this sample rate.
func DurationOf(sampleRate int, frames int64) time.Duration {
	return time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
}

// AsFloat64 converts an interleaved int signal to a non-interleaved
// float64 signal in the [-1, 1] range.
func (ints InterInt) AsFloat64() Float64 {
	if ints.Data == nil || ints.NumChannels == 0 {
		return nil
	}
	floats := make([][]float64, ints.NumChannels)
	bufSize := int(math.Ceil(float64(len(ints.Data)) / float64(ints.NumChannels)))

	scale := ints.BitDepth.scale()

	for i := range floats {
		floats[i] = make([]float64, bufSize)
		pos := 0
		for j := i; j < len(ints.Data); j = j + ints.NumChannels {
			floats[i][pos] = float64(ints.Data[j]) / scale
			pos++
		}
	}
	return floats
}

// AsInterInt converts a float64 signal to interleaved ints. Values are
// rounded to the nearest integer and clipped to the bit depth's range.
func (floats Float64) AsInterInt(bitDepth BitDepth) []int {
	var numChannels int
	if numChannels = len(floats); numChannels == 0 {
		return nil
	}

	scale := bitDepth.scale()
	min, max := -scale-1, scale

	ints := make([]int, len(floats[0])*numChannels)

	for j := range floats {
		for i := range floats[j] {
			value := math.Round(floats[j][i] * scale)
			if value > max {
				value = max
			} else if value < min {
				value = min
			}
			ints[i*numChannels+j] = int(value)
		}
	}
	return ints
}

// EmptyFloat64 returns an empty buffer of the specified dimensions.
func EmptyFloat64(numChannels int, bufferSize int) Float64 {
	result := make([][]float64, numChannels)
	for i := range result {
		result[i] = make([]float64, bufferSize)
	}
	return result
}

// NumChannels returns the number of channels in this signal.
func (floats Float64) NumChannels() int {
	return len(floats)
}

// Size returns the number of samples per channel in this signal.
func (floats Float64) Size() int {
	if floats.NumChannels() == 0 {
		return 0
	}
	return len(floats[0])
}

// Append appends the source signal to this one channel-wise.
// A new signal is returned if this one is nil.
func (floats Float64) Append(source Float64) Float64 {
	if floats == nil {
		floats = make([][]float64, source.NumChannels())
		for i := range floats {
			floats[i] = make([]float64, 0, source.Size())
		}
	}
	for i := range source {
		floats[i] = append(floats[i], source[i]...)
	}
	return floats
}
