// Package mp3 decodes mp3 loops and records played buffers to mp3 files.
package mp3

import (
	"io/ioutil"
	"os"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/pipelined/loopmix/pcm"
	"github.com/pipelined/loopmix/signal"
)

// Load decodes an entire mp3 file into a single interleaved PCM buffer.
// The decoder always produces 16-bit stereo output.
func Load(path string) (*pcm.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return nil, err
	}

	data, err := ioutil.ReadAll(decoder)
	if err != nil {
		return nil, err
	}

	return pcm.New(data, pcm.Format{
		SampleRate:  decoder.SampleRate(),
		NumChannels: 2,
		BitDepth:    signal.BitDepth16,
	})
}
