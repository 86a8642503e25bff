package render

import (
	"slices"
	"sync"
)

// Recorder is an in-memory Surface. It keeps the last value written to every
// field and the history of shown screens.
type Recorder struct {
	mu      sync.Mutex
	screen  Screen
	shown   []Screen
	texts   map[Field]string
	writes  map[Field][]string
	lists   map[Field][]string
	missing map[Field]bool
}

// NewRecorder creates a Recorder. Fields listed in missing behave as absent targets.
func NewRecorder(missing ...Field) *Recorder {
	r := &Recorder{
		texts:   make(map[Field]string),
		writes:  make(map[Field][]string),
		lists:   make(map[Field][]string),
		missing: make(map[Field]bool),
	}
	for _, f := range missing {
		r.missing[f] = true
	}
	return r
}

func (r *Recorder) Show(screen Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screen = screen
	r.shown = append(r.shown, screen)
}

func (r *Recorder) SetText(field Field, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missing[field] {
		return ErrNoTarget
	}
	r.texts[field] = value
	r.writes[field] = append(r.writes[field], value)
	return nil
}

func (r *Recorder) SetList(field Field, items []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missing[field] {
		return ErrNoTarget
	}
	r.lists[field] = slices.Clone(items)
	return nil
}

// Screen returns the currently visible screen.
func (r *Recorder) Screen() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen
}

// Shown returns every screen shown so far, in order.
func (r *Recorder) Shown() []Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.shown)
}

// Text returns the last value written to field.
func (r *Recorder) Text(field Field) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.texts[field]
	return v, ok
}

// Writes returns every value written to field, in order.
func (r *Recorder) Writes(field Field) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.writes[field])
}

// List returns the items last written to a list field.
func (r *Recorder) List(field Field) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.lists[field])
}
