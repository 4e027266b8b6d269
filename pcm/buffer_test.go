package pcm_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/loopmix/pcm"
	"github.com/pipelined/loopmix/signal"
)

var stereo16 = pcm.Format{
	SampleRate:  44100,
	NumChannels: 2,
	BitDepth:    signal.BitDepth16,
}

func TestFormat(t *testing.T) {
	assert.Equal(t, 4, stereo16.BytesPerSample())
	assert.Equal(t, 176400, stereo16.BytesPerSecond())

	mono32 := pcm.Format{SampleRate: 48000, NumChannels: 1, BitDepth: signal.BitDepth32}
	assert.Equal(t, 4, mono32.BytesPerSample())
	assert.Equal(t, 192000, mono32.BytesPerSecond())
}

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		name   string
		format pcm.Format
	}{
		{"zero sample rate", pcm.Format{NumChannels: 2, BitDepth: signal.BitDepth16}},
		{"zero channels", pcm.Format{SampleRate: 44100, BitDepth: signal.BitDepth16}},
		{"unsupported bit depth", pcm.Format{SampleRate: 44100, NumChannels: 2, BitDepth: 24}},
	}
	for _, test := range tests {
		err := test.format.Validate()
		require.Error(t, err, test.name)
		var formatErr *pcm.FormatError
		assert.True(t, errors.As(err, &formatErr), test.name)
	}

	assert.NoError(t, stereo16.Validate())
}

func TestNew(t *testing.T) {
	_, err := pcm.New(make([]byte, 8), pcm.Format{})
	require.Error(t, err)

	buf, err := pcm.New(make([]byte, 176400), stereo16)
	require.NoError(t, err)
	assert.Equal(t, time.Second, buf.Duration())
	assert.Equal(t, 176400, buf.Len())
}

func TestSeekAlignment(t *testing.T) {
	buf, err := pcm.New(make([]byte, 176400), stereo16)
	require.NoError(t, err)

	// every offset is frame-aligned for any timestamp
	for _, timestamp := range []time.Duration{
		0,
		time.Nanosecond,
		3*time.Millisecond + 7*time.Microsecond,
		time.Second / 3,
		999 * time.Millisecond,
	} {
		offset, err := buf.Seek(timestamp)
		require.NoError(t, err)
		assert.Zero(t, offset%4, "timestamp %v", timestamp)
	}
}

func TestSeekClamp(t *testing.T) {
	buf, err := pcm.New(make([]byte, 176400), stereo16)
	require.NoError(t, err)

	// past the end clamps to the last frame
	offset, err := buf.Seek(time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(176396), offset)

	offset, err = buf.Seek(-time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)
}

func TestSeekAndRead(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}
	buf, err := pcm.New(data, stereo16)
	require.NoError(t, err)

	// one frame is 4 bytes, 46us at 176400 B/s lands within frame 2
	offset, err := buf.Seek(46 * time.Microsecond)
	require.NoError(t, err)
	assert.Equal(t, int64(8), offset)

	read := make([]byte, 4)
	n, err := buf.Read(read)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{8, 9, 10, 11}, read)

	n, err = buf.Read(read)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{12, 13, 14, 15}, read)

	_, err = buf.Read(read)
	assert.Equal(t, io.EOF, err)
}

func TestDeinterleaveRoundTrip(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i * 31)
	}
	buf, err := pcm.New(data, stereo16)
	require.NoError(t, err)

	floats, err := buf.Deinterleave()
	require.NoError(t, err)
	assert.Equal(t, 2, floats.NumChannels())
	assert.Equal(t, 256, floats.Size())

	back, err := pcm.Interleave(floats, stereo16)
	require.NoError(t, err)
	assert.Equal(t, data, back.Bytes())
}

func TestDeinterleaveAlignment(t *testing.T) {
	// odd byte count for 16-bit stereo
	buf, err := pcm.New(make([]byte, 7), stereo16)
	require.NoError(t, err)

	_, err = buf.Deinterleave()
	require.Error(t, err)
	var alignErr *pcm.AlignmentError
	assert.True(t, errors.As(err, &alignErr))
}

func TestInterleaveChannelMismatch(t *testing.T) {
	_, err := pcm.Interleave(signal.EmptyFloat64(1, 4), stereo16)
	require.Error(t, err)
	var formatErr *pcm.FormatError
	assert.True(t, errors.As(err, &formatErr))
}
