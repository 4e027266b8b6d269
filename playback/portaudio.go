package playback

import (
	"github.com/gordonklaus/portaudio"

	"github.com/pipelined/loopmix/pcm"
)

// paStream plays samples through the default portaudio output device.
type paStream struct {
	stream      *portaudio.Stream
	buf         []float32
	numChannels int
}

// NewStream opens the default portaudio output for the given format.
// It also initializes the portaudio api; Close terminates it.
func NewStream(format pcm.Format, bufferSize int) (Stream, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s := &paStream{
		buf:         make([]float32, bufferSize*format.NumChannels),
		numChannels: format.NumChannels,
	}
	stream, err := portaudio.OpenDefaultStream(0, format.NumChannels, float64(format.SampleRate), bufferSize, &s.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return s, nil
}

// Start starts the underlying stream.
func (s *paStream) Start() error {
	return s.stream.Start()
}

// Write copies the samples into the bound buffer and writes it out. A
// short final chunk is zero-padded to the stream buffer size.
func (s *paStream) Write(samples []float32) error {
	n := copy(s.buf, samples)
	for i := n; i < len(s.buf); i++ {
		s.buf[i] = 0
	}
	return s.stream.Write()
}

// Stop stops the underlying stream.
func (s *paStream) Stop() error {
	return s.stream.Stop()
}

// Close closes the stream and terminates portaudio.
func (s *paStream) Close() error {
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
