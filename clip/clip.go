package clip

import (
	"errors"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/pipelined/loopmix/effect"
	"github.com/pipelined/loopmix/log"
	"github.com/pipelined/loopmix/pcm"
)

// ErrNoBars is returned when a clip is created without bars.
var ErrNoBars = errors.New("clip has no bars")

// State tags where a clip is in its lifecycle.
type State int

const (
	// Cued means the clip is sliced and ready, nothing enqueued yet.
	Cued State = iota
	// Playing means at least one bar was handed to the playback queue.
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "cued"
}

// Clip owns the bars of one loop variant and produces processed bars on
// demand. A clip has a single logical owner: NextBar and effect chain
// mutation must be serialized by the caller.
type Clip struct {
	uid     string
	name    string
	element string
	key     string
	bpm     float64

	bars    []*pcm.Buffer
	cursor  int
	current *pcm.Buffer

	// Magnitude scales the depth of the current effect.
	Magnitude float64

	chain *effect.Chain
	state State

	log *logrus.Logger
}

// New creates a clip over the sliced bars with a fresh fade-in queued on
// its effect chain. Bars are immutable after slicing.
func New(name, element string, bars []*pcm.Buffer, bpm float64, key string) (*Clip, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	return &Clip{
		uid:       xid.New().String(),
		name:      name,
		element:   element,
		key:       key,
		bpm:       bpm,
		bars:      bars,
		Magnitude: 1.0,
		chain:     effect.NewChain(effect.NewFadeIn()),
		state:     Cued,
		log:       log.GetLogger(),
	}, nil
}

// UID returns the unique id of the clip.
func (c *Clip) UID() string {
	return c.uid
}

// Name returns the song name.
func (c *Clip) Name() string {
	return c.name
}

// Element returns the thematic element tag (intro, drop, outro...).
func (c *Clip) Element() string {
	return c.element
}

// Key returns the Camelot mixing key. It is an opaque string here.
func (c *Clip) Key() string {
	return c.key
}

// BPM returns the tempo of the clip.
func (c *Clip) BPM() float64 {
	return c.bpm
}

// Bars returns the number of bars in the clip.
func (c *Clip) Bars() int {
	return len(c.bars)
}

// Cursor returns the index of the bar the next NextBar call will produce.
func (c *Clip) Cursor() int {
	return c.cursor
}

// CurrentBar returns the bar produced by the last NextBar call.
func (c *Clip) CurrentBar() *pcm.Buffer {
	return c.current
}

// Chain returns the effect chain of the clip.
func (c *Clip) Chain() *effect.Chain {
	return c.chain
}

// State returns the playback state tag.
func (c *Clip) State() State {
	return c.state
}

// MarkPlaying transitions the clip from cued to playing. Called by the
// playback driver on the first enqueue.
func (c *Clip) MarkPlaying() {
	c.state = Playing
}

// NextBar produces the next bar: it applies the head of the effect chain
// to the bar at the cursor, advances the cursor cyclically and returns a
// new buffer. Every call yields a buffer with its own read cursor, so
// consumers draining one bar never exhaust the next pass over the loop.
// The transform covers every sample of the bar, so this call must be
// made ahead of the playback deadline, never on the real-time path.
func (c *Clip) NextBar() (*pcm.Buffer, error) {
	bar := c.bars[c.cursor]
	c.log.Debugf("computing bar %d of %s", c.cursor, c.name)

	var out *pcm.Buffer
	var err error
	if c.chain.Len() > 0 {
		floats, err := bar.Deinterleave()
		if err != nil {
			return nil, err
		}
		floats = c.chain.Apply(floats)
		if out, err = pcm.Interleave(floats, bar.Format()); err != nil {
			return nil, err
		}
	} else {
		// unmodified bars still get a fresh handle over the stored bytes
		if out, err = pcm.New(bar.Bytes(), bar.Format()); err != nil {
			return nil, err
		}
	}

	c.current = out
	c.cursor = (c.cursor + 1) % len(c.bars)
	return out, nil
}
