// Package wav decodes and encodes RIFF/WAV files as raw PCM buffers.
// The core never parses container formats itself; this is the external
// decode step it relies on.
package wav

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/loopmix/pcm"
	"github.com/pipelined/loopmix/signal"
)

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 16 and 32 bit depth is supported")

// pcm wav format code
const wavFormat = 1

// Load decodes an entire wav file into a single interleaved PCM buffer.
func Load(path string) (*pcm.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("wav %v is not valid", path)
	}

	bitDepth := signal.BitDepth(decoder.BitDepth)
	if bitDepth != signal.BitDepth16 && bitDepth != signal.BitDepth32 {
		return nil, ErrUnsupportedBitDepth
	}

	ib, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	return pcm.Encode(ib.Data, pcm.Format{
		SampleRate:  int(decoder.SampleRate),
		NumChannels: decoder.Format().NumChannels,
		BitDepth:    bitDepth,
	})
}

// Save encodes a PCM buffer into a wav file.
func Save(path string, buf *pcm.Buffer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	format := buf.Format()
	encoder := wav.NewEncoder(file, format.SampleRate, int(format.BitDepth), format.NumChannels, wavFormat)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: format.NumChannels,
			SampleRate:  format.SampleRate,
		},
		SourceBitDepth: int(format.BitDepth),
		Data:           buf.Ints(),
	}
	if err := encoder.Write(ib); err != nil {
		file.Close()
		return err
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
