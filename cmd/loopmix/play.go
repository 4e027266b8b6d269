package main

import (
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pipelined/loopmix/log"
	"github.com/pipelined/loopmix/manifest"
	"github.com/pipelined/loopmix/mix"
	"github.com/pipelined/loopmix/mp3"
	"github.com/pipelined/loopmix/pcm"
	"github.com/pipelined/loopmix/playback"
	"github.com/pipelined/loopmix/wav"
)

// playCommand cues a clip/loop pair and plays it until interrupted.
type playCommand struct {
	dir        string
	clip       string
	loop       string
	record     string
	bufferSize int
	debug      bool
}

func (c *playCommand) Name() string { return "play" }

func (c *playCommand) Help() string { return "play a loop from the clip directory" }

func (c *playCommand) Register(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "clips", "directory of clips")
	f.StringVar(&c.clip, "clip", "", "clip name")
	f.StringVar(&c.loop, "loop", "basic", "loop variant")
	f.StringVar(&c.record, "record", "", "record the set to this mp3 file")
	f.IntVar(&c.bufferSize, "buffer", 512, "stream buffer size in frames")
	f.BoolVar(&c.debug, "debug", false, "turn on debugging")
}

func (c *playCommand) Run() error {
	log.SetDebug(c.debug)
	logger := log.GetLogger()

	m, err := manifest.Load(filepath.Join(c.dir, "manifest.json"))
	if err != nil {
		return err
	}

	source, err := m.Resolve(c.clip, c.loop)
	if err != nil {
		return err
	}
	// decode once up front to learn the stream format
	var probe *pcm.Buffer
	if filepath.Ext(source.Path) == ".mp3" {
		probe, err = mp3.Load(source.Path)
	} else {
		probe, err = wav.Load(source.Path)
	}
	if err != nil {
		return err
	}

	stream, err := playback.NewStream(probe.Format(), c.bufferSize)
	if err != nil {
		return err
	}

	options := []playback.Option{playback.WithBufferSize(c.bufferSize)}
	var recorder *mp3.Recorder
	if c.record != "" {
		recorder = mp3.NewRecorder(c.record, 192, 2)
		options = append(options, playback.WithRecorder(recorder))
	}

	session := mix.New(m, playback.New(stream, options...))
	defer session.Close()
	if recorder != nil {
		defer recorder.Close()
	}

	if err := session.Cue(c.clip, c.loop); err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return err
	}
	logger.Infof("playing %s/%s at %v bpm, interrupt to stop", c.clip, c.loop, source.BPM)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	return nil
}
