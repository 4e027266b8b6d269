package main

import (
	"errors"
	"flag"
	"path/filepath"

	"github.com/pipelined/loopmix/clip"
	"github.com/pipelined/loopmix/log"
	"github.com/pipelined/loopmix/manifest"
	"github.com/pipelined/loopmix/pcm"
	"github.com/pipelined/loopmix/signal"
	"github.com/pipelined/loopmix/wav"
)

// bounceCommand renders processed bars of a loop offline into a wav file.
type bounceCommand struct {
	dir   string
	clip  string
	loop  string
	out   string
	bars  int
	debug bool
}

func (c *bounceCommand) Name() string { return "bounce" }

func (c *bounceCommand) Help() string { return "render processed bars of a loop to a wav file" }

func (c *bounceCommand) Register(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "clips", "directory of clips")
	f.StringVar(&c.clip, "clip", "", "clip name")
	f.StringVar(&c.loop, "loop", "basic", "loop variant")
	f.StringVar(&c.out, "out", "bounce.wav", "output wav file")
	f.IntVar(&c.bars, "bars", 4, "number of bars to render")
	f.BoolVar(&c.debug, "debug", false, "turn on debugging")
}

func (c *bounceCommand) Run() error {
	if c.bars <= 0 {
		return errors.New("bars must be positive")
	}
	log.SetDebug(c.debug)

	m, err := manifest.Load(filepath.Join(c.dir, "manifest.json"))
	if err != nil {
		return err
	}
	source, err := m.Resolve(c.clip, c.loop)
	if err != nil {
		return err
	}
	loop, err := wav.Load(source.Path)
	if err != nil {
		return err
	}

	bars, err := clip.Slicer{}.Slice(loop, source.BPM, source.Beats)
	if err != nil {
		return err
	}
	cl, err := clip.New(source.Name, source.Loop, bars, source.BPM, source.Key)
	if err != nil {
		return err
	}

	var mixed signal.Float64
	for i := 0; i < c.bars; i++ {
		bar, err := cl.NextBar()
		if err != nil {
			return err
		}
		floats, err := bar.Deinterleave()
		if err != nil {
			return err
		}
		mixed = mixed.Append(floats)
	}
	rendered, err := pcm.Interleave(mixed, loop.Format())
	if err != nil {
		return err
	}
	return wav.Save(c.out, rendered)
}
