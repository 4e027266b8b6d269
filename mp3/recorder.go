package mp3

import (
	"os"

	"github.com/viert/lame"

	"github.com/pipelined/loopmix/pcm"
	"github.com/pipelined/loopmix/signal"
)

// Recorder encodes played buffers into an mp3 file. It is handed to the
// player as a tee: every buffer that reaches the output also reaches the
// recorder.
type Recorder struct {
	path    string
	bitRate int
	quality int
	file    *os.File
	writer  *lame.LameWriter
}

// NewRecorder creates a recorder writing to path with the given bit rate
// and quality. The file is created on the first recorded buffer.
func NewRecorder(path string, bitRate int, quality int) *Recorder {
	return &Recorder{
		path:    path,
		bitRate: bitRate,
		quality: quality,
	}
}

// Record encodes one buffer. Only 16-bit input is accepted, the lame
// writer consumes interleaved 16-bit little-endian frames directly.
func (r *Recorder) Record(buf *pcm.Buffer) error {
	format := buf.Format()
	if format.BitDepth != signal.BitDepth16 {
		return &pcm.FormatError{Format: format, Reason: "mp3 recording requires 16 bit input"}
	}
	if r.writer == nil {
		if err := r.init(format); err != nil {
			return err
		}
	}
	_, err := r.writer.Write(buf.Bytes())
	return err
}

func (r *Recorder) init(format pcm.Format) error {
	file, err := os.Create(r.path)
	if err != nil {
		return err
	}
	writer := lame.NewWriter(file)
	writer.Encoder.SetBitrate(r.bitRate)
	writer.Encoder.SetQuality(r.quality)
	writer.Encoder.SetNumChannels(format.NumChannels)
	writer.Encoder.SetInSamplerate(format.SampleRate)
	writer.Encoder.SetMode(lame.JOINT_STEREO)
	writer.Encoder.SetVBR(lame.VBR_RH)
	writer.Encoder.InitParams()

	r.file = file
	r.writer = writer
	return nil
}

// Close flushes the encoder and closes the file.
func (r *Recorder) Close() error {
	if r.writer == nil {
		return nil
	}
	if err := r.writer.Close(); err != nil {
		return err
	}
	return r.file.Close()
}
