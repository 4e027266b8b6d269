// Package playback queues processed bars and feeds them to an audio
// output in FIFO order. The player never computes audio on the
// real-time path: bars arrive fully processed and are only chunked and
// written to the stream.
package playback

import (
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pipelined/loopmix/log"
	"github.com/pipelined/loopmix/pcm"
	"github.com/pipelined/loopmix/signal"
)

// Stream is the audio output a player writes interleaved float32
// samples to.
type Stream interface {
	Start() error
	Write([]float32) error
	Stop() error
	Close() error
}

// Recorder receives every buffer handed to the output, in play order.
type Recorder interface {
	Record(*pcm.Buffer) error
}

// ErrClosed is returned on use of a closed player.
var ErrClosed = errors.New("player is closed")

// ErrNothingQueued is returned when a seek has no buffer to act on.
var ErrNothingQueued = errors.New("nothing is playing")

const (
	defaultBufferSize = 512
	defaultQueueDepth = 2
)

type commandKind int

const (
	cmdPlay commandKind = iota
	cmdPause
	cmdSeek
)

type command struct {
	kind commandKind
	ts   time.Duration
	errc chan error
}

// Player plays queued buffers sequentially and notifies end of stream
// after each exhausted buffer so the caller can enqueue the next bar.
type Player struct {
	stream     Stream
	bufferSize int
	recorder   Recorder
	logger     *logrus.Logger

	queue    chan *pcm.Buffer
	commands chan command
	eos      chan struct{}
	closed   chan struct{}
	done     chan struct{}

	closeOnce sync.Once

	mu       sync.Mutex
	playing  bool
	position time.Duration
	duration time.Duration
}

// Option configures a player.
type Option func(*Player)

// WithBufferSize sets the number of frames per stream write.
func WithBufferSize(frames int) Option {
	return func(p *Player) {
		p.bufferSize = frames
	}
}

// WithQueueDepth sets how many buffers can wait in the queue. Enqueue
// blocks when the queue is full.
func WithQueueDepth(depth int) Option {
	return func(p *Player) {
		p.queue = make(chan *pcm.Buffer, depth)
	}
}

// WithRecorder tees every played buffer to the recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Player) {
		p.recorder = r
	}
}

// New creates a player over the stream and starts its playback loop.
func New(stream Stream, options ...Option) *Player {
	p := &Player{
		stream:     stream,
		bufferSize: defaultBufferSize,
		logger:     log.GetLogger(),
		queue:      make(chan *pcm.Buffer, defaultQueueDepth),
		commands:   make(chan command),
		eos:        make(chan struct{}, defaultQueueDepth+1),
		closed:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, option := range options {
		option(p)
	}
	go p.loop()
	return p
}

// Enqueue hands a buffer to the player. The player owns the buffer from
// this point on. Blocks while the queue is full.
func (p *Player) Enqueue(buf *pcm.Buffer) error {
	select {
	case p.queue <- buf:
		return nil
	case <-p.closed:
		return ErrClosed
	}
}

// EndOfStream returns the channel that receives a notification each
// time a queued buffer is exhausted.
func (p *Player) EndOfStream() <-chan struct{} {
	return p.eos
}

// Play starts or resumes playback.
func (p *Player) Play() error {
	return p.send(command{kind: cmdPlay, errc: make(chan error, 1)})
}

// Pause suspends playback, keeping the current buffer and position.
func (p *Player) Pause() error {
	return p.send(command{kind: cmdPause, errc: make(chan error, 1)})
}

// Seek moves the play position within the current buffer.
func (p *Player) Seek(timestamp time.Duration) error {
	return p.send(command{kind: cmdSeek, ts: timestamp, errc: make(chan error, 1)})
}

// Playing reports whether the player is currently playing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Time returns the play position within the current buffer.
func (p *Player) Time() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// Duration returns the duration of the current buffer.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// Close stops the loop and closes the stream. Queued buffers are
// dropped.
func (p *Player) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.closed)
		<-p.done
		err = p.stream.Close()
	})
	return err
}

func (p *Player) send(cmd command) error {
	select {
	case p.commands <- cmd:
		return <-cmd.errc
	case <-p.closed:
		return ErrClosed
	}
}

// loop owns the current buffer and serializes all playback state.
func (p *Player) loop() {
	defer close(p.done)

	var (
		current *pcm.Buffer
		played  int64
		started bool
		chunk   []byte
	)
	defer func() {
		if started {
			if err := p.stream.Stop(); err != nil {
				p.logger.Info("stream stop failed: ", err)
			}
		}
	}()

	handle := func(cmd command) {
		var err error
		switch cmd.kind {
		case cmdPlay:
			if !started {
				if err = p.stream.Start(); err == nil {
					started = true
				}
			}
			if err == nil {
				p.setPlaying(true)
			}
		case cmdPause:
			p.setPlaying(false)
		case cmdSeek:
			if current == nil {
				err = ErrNothingQueued
			} else {
				played, err = current.Seek(cmd.ts)
				if err == nil {
					p.setPosition(current, played)
				}
			}
		}
		cmd.errc <- err
	}

	for {
		// paused or drained: block until a command or the next buffer
		if !p.Playing() || current == nil {
			queue := p.queue
			if current != nil {
				queue = nil
			}
			select {
			case cmd := <-p.commands:
				handle(cmd)
			case buf := <-queue:
				current = p.admit(buf)
				played = 0
			case <-p.closed:
				return
			}
			continue
		}

		// playing: poll commands between chunk writes
		select {
		case cmd := <-p.commands:
			handle(cmd)
			continue
		case <-p.closed:
			return
		default:
		}

		format := current.Format()
		size := p.bufferSize * format.BytesPerSample()
		if cap(chunk) < size {
			chunk = make([]byte, size)
		}
		n, err := current.Read(chunk[:size])
		if err == io.EOF {
			p.notifyEndOfStream()
			current = nil
			continue
		}
		played += int64(n)
		if err := p.stream.Write(toFloat32(chunk[:n], format.BitDepth)); err != nil {
			p.logger.Info("stream write failed: ", err)
			p.setPlaying(false)
			continue
		}
		p.setPosition(current, played)
	}
}

// admit makes a queued buffer current: tees it to the recorder and
// resets the position state.
func (p *Player) admit(buf *pcm.Buffer) *pcm.Buffer {
	if p.recorder != nil {
		if err := p.recorder.Record(buf); err != nil {
			p.logger.Info("recording failed: ", err)
		}
	}
	p.mu.Lock()
	p.position = 0
	p.duration = buf.Duration()
	p.mu.Unlock()
	return buf
}

func (p *Player) setPlaying(playing bool) {
	p.mu.Lock()
	p.playing = playing
	p.mu.Unlock()
}

func (p *Player) setPosition(buf *pcm.Buffer, played int64) {
	format := buf.Format()
	p.mu.Lock()
	p.position = signal.DurationOf(format.SampleRate, played/int64(format.BytesPerSample()))
	p.mu.Unlock()
}

// notifyEndOfStream never blocks the playback loop: a notification is
// dropped when the consumer lags behind the queue depth.
func (p *Player) notifyEndOfStream() {
	select {
	case p.eos <- struct{}{}:
	default:
		p.logger.Info("end of stream notification dropped")
	}
}

// toFloat32 converts little-endian PCM bytes to interleaved float32
// samples in the [-1, 1] range.
func toFloat32(data []byte, bitDepth signal.BitDepth) []float32 {
	ints := pcm.Ints(data, bitDepth)
	scale := float64(math.MaxInt16)
	if bitDepth == signal.BitDepth32 {
		scale = float64(math.MaxInt32)
	}
	samples := make([]float32, len(ints))
	for i, v := range ints {
		samples[i] = float32(float64(v) / scale)
	}
	return samples
}
