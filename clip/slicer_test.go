package clip_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/loopmix/clip"
	"github.com/pipelined/loopmix/pcm"
	"github.com/pipelined/loopmix/signal"
)

var stereo16 = pcm.Format{
	SampleRate:  44100,
	NumChannels: 2,
	BitDepth:    signal.BitDepth16,
}

func loopBuffer(t *testing.T, size int) *pcm.Buffer {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i * 7)
	}
	buf, err := pcm.New(data, stereo16)
	require.NoError(t, err)
	return buf
}

func TestSlicerGeometry(t *testing.T) {
	// 44100 Hz at 128 bpm: 20672 samples per beat, 330752 bytes per bar
	const (
		bpm         = 128.0
		beats       = 16
		bytesPerBar = 330752
	)
	loop := loopBuffer(t, 20672*4*beats)

	bars, err := clip.Slicer{}.Slice(loop, bpm, beats)
	require.NoError(t, err)

	assert.Equal(t, beats/clip.DefaultBeatsPerBar, len(bars))
	total := 0
	for _, bar := range bars {
		assert.Equal(t, bytesPerBar, bar.Len())
		assert.Equal(t, stereo16, bar.Format())
		total += bar.Len()
	}
	assert.Equal(t, bytesPerBar*len(bars), total)
}

func TestSlicerBarsAreOrdered(t *testing.T) {
	format := pcm.Format{SampleRate: 100, NumChannels: 2, BitDepth: signal.BitDepth16}
	data := make([]byte, 4800)
	for i := range data {
		data[i] = byte(i)
	}
	small, err := pcm.New(data, format)
	require.NoError(t, err)

	// 60 bpm at 100 Hz: 100 samples per beat, 1600 bytes per bar
	bars, err := clip.Slicer{}.Slice(small, 60, 12)
	require.NoError(t, err)
	require.Equal(t, 3, len(bars))
	assert.Equal(t, data[:1600], bars[0].Bytes())
	assert.Equal(t, data[1600:3200], bars[1].Bytes())
	assert.Equal(t, data[3200:4800], bars[2].Bytes())
}

func TestSlicerInsufficientData(t *testing.T) {
	loop := loopBuffer(t, 1024)

	_, err := clip.Slicer{}.Slice(loop, 128, 16)
	require.Error(t, err)
	var insufficient *clip.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 20672*4*16, insufficient.Need)
	assert.Equal(t, 1024, insufficient.Have)
}

func TestSlicerRemainder(t *testing.T) {
	// 60 bpm at 100 Hz, 6 beats: 2400 total bytes, 1600 per bar
	format := pcm.Format{SampleRate: 100, NumChannels: 2, BitDepth: signal.BitDepth16}
	loop, err := pcm.New(make([]byte, 2400), format)
	require.NoError(t, err)

	tests := []struct {
		policy  clip.RemainderPolicy
		bars    int
		wantErr bool
	}{
		{policy: clip.DropRemainder, bars: 1},
		{policy: clip.PadRemainder, bars: 2},
		{policy: clip.ErrRemainder, wantErr: true},
	}
	for _, test := range tests {
		bars, err := clip.Slicer{Remainder: test.policy}.Slice(loop, 60, 6)
		if test.wantErr {
			require.Error(t, err)
			var partial *clip.PartialBarError
			assert.True(t, errors.As(err, &partial))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, test.bars, len(bars))
		for _, bar := range bars {
			assert.Equal(t, 1600, bar.Len())
		}
	}
}

func TestSlicerArguments(t *testing.T) {
	loop := loopBuffer(t, 1024)

	_, err := clip.Slicer{}.Slice(loop, 0, 4)
	assert.Equal(t, clip.ErrNonPositiveTempo, err)
	_, err = clip.Slicer{}.Slice(loop, -128, 4)
	assert.Equal(t, clip.ErrNonPositiveTempo, err)
	_, err = clip.Slicer{}.Slice(loop, 128, 0)
	assert.Equal(t, clip.ErrNonPositiveBeats, err)
}
