package effect

import "github.com/pipelined/loopmix/signal"

// Backend executes the numeric transform of an effect. Implementations
// may run on an accelerated compute device; the deinterleaved channel
// arrays are the unit of transfer, handed over once per Process call.
type Backend interface {
	// Ramp returns count values interpolated linearly from start to
	// end, with both endpoints included.
	Ramp(start, end float64, count int) []float64
	// Scale multiplies every channel elementwise by the ramp and
	// returns the result as a new signal.
	Scale(floats signal.Float64, ramp []float64) signal.Float64
}

// hostBackend computes transforms on the host CPU. It is the default.
type hostBackend struct{}

func (hostBackend) Ramp(start, end float64, count int) []float64 {
	ramp := make([]float64, count)
	if count == 0 {
		return ramp
	}
	if count == 1 {
		ramp[0] = start
		return ramp
	}
	step := (end - start) / float64(count-1)
	for i := range ramp {
		ramp[i] = start + float64(i)*step
	}
	// guarantee the inclusive endpoint regardless of rounding
	ramp[count-1] = end
	return ramp
}

func (hostBackend) Scale(floats signal.Float64, ramp []float64) signal.Float64 {
	out := make([][]float64, floats.NumChannels())
	for i := range floats {
		out[i] = make([]float64, len(floats[i]))
		for j := range floats[i] {
			out[i][j] = floats[i][j] * ramp[j]
		}
	}
	return out
}
