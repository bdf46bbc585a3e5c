package handlers

import (
	"fmt"
	"sync"
)

// AppName appears in the window title.
const AppName = "Photo Culler"

// Counter reports the catalog size.
type Counter interface {
	Len() int
}

// TitleTracker keeps the window title for the most recently served image.
type TitleTracker struct {
	counter Counter

	mu    sync.RWMutex
	title string
	index uint64
	name  string
}

// NewTitleTracker creates a tracker showing the bare application name.
func NewTitleTracker(counter Counter) *TitleTracker {
	return &TitleTracker{counter: counter, title: AppName}
}

// OnServed matches delivery.ServedFunc.
func (t *TitleTracker) OnServed(index uint64, name string) {
	total := 0
	if t.counter != nil {
		total = t.counter.Len()
	}

	title := fmt.Sprintf("%s (%d/%d) - %s", name, index+1, total, AppName)

	t.mu.Lock()
	t.title = title
	t.index = index
	t.name = name
	t.mu.Unlock()
}

// Reset returns the title to the application name, for example after a
// new directory is opened.
func (t *TitleTracker) Reset() {
	t.mu.Lock()
	t.title = AppName
	t.index = 0
	t.name = ""
	t.mu.Unlock()
}

// Title returns the current title.
func (t *TitleTracker) Title() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.title
}

// Current returns the last served index and name. ok is false before the
// first delivery.
func (t *TitleTracker) Current() (index uint64, name string, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index, t.name, t.name != ""
}
