// Package mix drives a playback player from manifest-described loops:
// it cues clips, computes bars ahead of the playback deadline and keeps
// the player queue fed.
package mix

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pipelined/loopmix/clip"
	"github.com/pipelined/loopmix/log"
	"github.com/pipelined/loopmix/manifest"
	"github.com/pipelined/loopmix/mp3"
	"github.com/pipelined/loopmix/pcm"
	"github.com/pipelined/loopmix/playback"
	"github.com/pipelined/loopmix/wav"
)

// ErrNoClipCued is returned when playback is started with nothing cued.
var ErrNoClipCued = errors.New("no clip cued")

const defaultLookahead = 2

// Session owns the active clip and the producer side of the playback
// queue. Bars are computed on the session goroutine, never on the
// playback path.
type Session struct {
	manifest  *manifest.Manifest
	player    *playback.Player
	slicer    clip.Slicer
	lookahead int
	logger    *logrus.Logger

	mu     sync.Mutex
	active *clip.Clip

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
	errs      chan error
}

// Option configures a session.
type Option func(*Session)

// WithSlicer overrides the bar slicer.
func WithSlicer(s clip.Slicer) Option {
	return func(session *Session) {
		session.slicer = s
	}
}

// WithLookahead sets how many bars are computed and enqueued before
// playback starts.
func WithLookahead(bars int) Option {
	return func(session *Session) {
		session.lookahead = bars
	}
}

// New creates a session over a manifest and a player. The session owns
// the player and closes it together with itself.
func New(m *manifest.Manifest, p *playback.Player, options ...Option) *Session {
	s := &Session{
		manifest:  m,
		player:    p,
		lookahead: defaultLookahead,
		logger:    log.GetLogger(),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		errs:      make(chan error, 1),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Cue loads, slices and activates a clip/loop pair. The previous active
// clip is dropped; bars of it already queued still play out.
func (s *Session) Cue(name, loop string) error {
	source, err := s.manifest.Resolve(name, loop)
	if err != nil {
		return err
	}

	buf, err := load(source.Path)
	if err != nil {
		return err
	}

	bars, err := s.slicer.Slice(buf, source.BPM, source.Beats)
	if err != nil {
		return fmt.Errorf("slicing %s/%s: %w", name, loop, err)
	}

	c, err := clip.New(source.Name, source.Loop, bars, source.BPM, source.Key)
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"clip": name,
		"loop": loop,
		"bpm":  source.BPM,
		"key":  source.Key,
		"bars": c.Bars(),
	}).Info("clip cued")

	s.mu.Lock()
	s.active = c
	s.mu.Unlock()
	return nil
}

// Active returns the active clip, nil when nothing is cued.
func (s *Session) Active() *clip.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start fills the playback queue ahead of the deadline and starts the
// player and the feeding goroutine.
func (s *Session) Start() error {
	if s.Active() == nil {
		return ErrNoClipCued
	}
	for i := 0; i < s.lookahead; i++ {
		if err := s.enqueueNext(); err != nil {
			return err
		}
	}
	if err := s.player.Play(); err != nil {
		return err
	}
	s.startOnce.Do(func() {
		go s.run()
	})
	return nil
}

// Err reports the error that stopped the feeder, if any. Playback of
// already queued bars continues; the caller decides whether to cue
// something else or close the session.
func (s *Session) Err() <-chan error {
	return s.errs
}

// run responds to every exhausted buffer by computing and enqueuing the
// next bar. It stops on the first feed failure.
func (s *Session) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case <-s.player.EndOfStream():
			if !s.feedNext() {
				return
			}
		}
	}
}

// feedNext computes and enqueues one bar, reporting failures on the
// error channel. It returns false when feeding must stop.
func (s *Session) feedNext() bool {
	err := s.enqueueNext()
	if err == nil {
		return true
	}
	if errors.Is(err, playback.ErrClosed) {
		return false
	}
	s.logger.Info("stopping feed: ", err)
	select {
	case s.errs <- err:
	default:
	}
	return false
}

// enqueueNext computes one processed bar of the active clip and hands
// it to the player.
func (s *Session) enqueueNext() error {
	c := s.Active()
	if c == nil {
		return ErrNoClipCued
	}
	bar, err := c.NextBar()
	if err != nil {
		return err
	}
	if err := s.player.Enqueue(bar); err != nil {
		return err
	}
	c.MarkPlaying()
	return nil
}

// Close stops the feeding goroutine and closes the player.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.startOnce.Do(func() {
			close(s.stopped)
		})
		<-s.stopped
		err = s.player.Close()
	})
	return err
}

// load decodes a media file by extension.
func load(path string) (*pcm.Buffer, error) {
	if filepath.Ext(path) == ".mp3" {
		return mp3.Load(path)
	}
	return wav.Load(path)
}
