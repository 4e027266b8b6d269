package pcm

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/pipelined/loopmix/signal"
)

// Buffer is an immutable handle over interleaved PCM bytes. The data is
// never mutated after construction; processing always produces a new
// buffer. A buffer carries an internal read cursor for sequential reads,
// positioned with Seek.
type Buffer struct {
	data   []byte
	format Format
	pos    int64
}

// New constructs a buffer over the given data. It fails with a
// FormatError if the format is degenerate.
func New(data []byte, format Format) (*Buffer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Buffer{data: data, format: format}, nil
}

// Format returns the stream format of the buffer.
func (b *Buffer) Format() Format {
	return b.format
}

// Len returns the length of the underlying data in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the underlying data. It must not be modified.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Duration returns the play time of the whole buffer.
func (b *Buffer) Duration() time.Duration {
	return signal.DurationOf(b.format.SampleRate, int64(len(b.data)/b.format.BytesPerSample()))
}

// Seek positions the read cursor at the frame containing the timestamp
// and returns the byte offset. The offset is rounded down to a frame
// boundary so playback always resumes on a whole sample. Seeking past
// the end of the buffer clamps to the last frame-aligned offset.
func (b *Buffer) Seek(timestamp time.Duration) (int64, error) {
	bytesPerSample := int64(b.format.BytesPerSample())
	if bytesPerSample <= 0 {
		return 0, &AlignmentError{Size: len(b.data), BytesPerSample: int(bytesPerSample)}
	}
	offset := int64(timestamp.Seconds() * float64(b.format.BytesPerSecond()))
	offset -= offset % bytesPerSample
	if last := int64(len(b.data)) - bytesPerSample; offset > last {
		offset = last
	}
	if offset < 0 {
		offset = 0
	}
	b.pos = offset
	return offset, nil
}

// Read reads sequentially from the cursor position.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Deinterleave unpacks the buffer into per-channel sample arrays scaled
// to the [-1, 1] range. It fails with an AlignmentError if the data does
// not divide into whole frames.
func (b *Buffer) Deinterleave() (signal.Float64, error) {
	bytesPerSample := b.format.BytesPerSample()
	if bytesPerSample <= 0 || len(b.data)%bytesPerSample != 0 {
		return nil, &AlignmentError{Size: len(b.data), BytesPerSample: bytesPerSample}
	}
	return signal.InterInt{
		Data:        b.Ints(),
		NumChannels: b.format.NumChannels,
		BitDepth:    b.format.BitDepth,
	}.AsFloat64(), nil
}

// Interleave packs per-channel sample arrays into a new buffer with the
// given format.
func Interleave(floats signal.Float64, format Format) (*Buffer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if floats.NumChannels() != format.NumChannels {
		return nil, &FormatError{Format: format, Reason: "channel count mismatch"}
	}
	return Encode(floats.AsInterInt(format.BitDepth), format)
}

// Encode packs interleaved integer samples into a new buffer.
func Encode(ints []int, format Format) (*Buffer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	switch format.BitDepth {
	case signal.BitDepth16:
		data := make([]byte, len(ints)*2)
		for i, v := range ints {
			binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(v)))
		}
		return New(data, format)
	default:
		data := make([]byte, len(ints)*4)
		for i, v := range ints {
			binary.LittleEndian.PutUint32(data[i*4:], uint32(int32(v)))
		}
		return New(data, format)
	}
}

// Ints decodes the buffer data into interleaved integer samples.
func (b *Buffer) Ints() []int {
	return Ints(b.data, b.format.BitDepth)
}

// Ints decodes little-endian bytes into interleaved integer samples.
func Ints(data []byte, bitDepth signal.BitDepth) []int {
	switch bitDepth {
	case signal.BitDepth16:
		ints := make([]int, len(data)/2)
		for i := range ints {
			ints[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
		}
		return ints
	default:
		ints := make([]int, len(data)/4)
		for i := range ints {
			ints[i] = int(int32(binary.LittleEndian.Uint32(data[i*4:])))
		}
		return ints
	}
}
