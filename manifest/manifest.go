// Package manifest loads the clip database: a JSON mapping from clip
// name to tempo, key and the loop variants available for it.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Entry describes one clip in the manifest.
type Entry struct {
	BPM   float64         `json:"bpm"`
	Key   string          `json:"key"`
	Loops map[string]Loop `json:"loops"`
}

// Loop describes one loop variant of a clip.
type Loop struct {
	Beats int `json:"beats"`
}

// Source describes a cueable loop: tempo, key, length and the path of
// the decoded media.
type Source struct {
	Name  string
	Loop  string
	BPM   float64
	Key   string
	Beats int
	Path  string
}

// NotFoundError is returned when a clip or loop is missing from the
// manifest or its media file does not exist.
type NotFoundError struct {
	Clip string
	Loop string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("media for %s/%s not found at %s", e.Clip, e.Loop, e.Path)
	}
	return fmt.Sprintf("not in database: %s/%s", e.Clip, e.Loop)
}

// Manifest maps clip names to their mixing metadata.
type Manifest struct {
	dir   string
	clips map[string]Entry
}

// Load reads a manifest file. The directory of the file is used to
// resolve media paths.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	clips := make(map[string]Entry)
	if err := json.NewDecoder(f).Decode(&clips); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &Manifest{dir: filepath.Dir(path), clips: clips}, nil
}

// Names returns the clip names in sorted order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.clips))
	for name := range m.clips {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the playback source for a clip/loop pair. The media
// path is <dir>/<name>/<loop>.wav, falling back to <loop>.mp3 when no
// wav file exists. A missing entry or media file is a recoverable,
// typed error.
func (m *Manifest) Resolve(name, loop string) (Source, error) {
	entry, ok := m.clips[name]
	if !ok {
		return Source{}, &NotFoundError{Clip: name, Loop: loop}
	}
	meta, ok := entry.Loops[loop]
	if !ok {
		return Source{}, &NotFoundError{Clip: name, Loop: loop}
	}

	path := filepath.Join(m.dir, name, loop+".wav")
	if _, err := os.Stat(path); err != nil {
		mp3Path := filepath.Join(m.dir, name, loop+".mp3")
		if _, err := os.Stat(mp3Path); err != nil {
			return Source{}, &NotFoundError{Clip: name, Loop: loop, Path: path}
		}
		path = mp3Path
	}

	return Source{
		Name:  name,
		Loop:  loop,
		BPM:   entry.BPM,
		Key:   entry.Key,
		Beats: meta.Beats,
		Path:  path,
	}, nil
}
