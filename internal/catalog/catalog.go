package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"photo-culler/internal/filesystem"
	"photo-culler/internal/logging"
	"photo-culler/internal/mediatypes"
	"photo-culler/internal/metrics"
)

var (
	// ErrIndexOutOfRange is returned for positions past the end of the catalog.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNotLoaded is returned by operations that need a loaded directory.
	ErrNotLoaded = errors.New("no directory loaded")
)

// Item is one photo in the catalog. Its identity is its position.
type Item struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// VoteStore persists votes per directory. Statuses travel as their names.
type VoteStore interface {
	LoadVotes(ctx context.Context, sourceDir string) (map[string]string, error)
	SaveVote(ctx context.Context, sourceDir, name, status string) error
}

// Summary counts items per status.
type Summary struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Keep    int `json:"keep"`
	Delete  int `json:"delete"`
}

// Snapshot is a consistent copy of the catalog.
type Snapshot struct {
	SourceDir  string `json:"sourceDir"`
	Generation string `json:"generation"`
	Items      []Item `json:"items"`
}

// Catalog is the ordered, voteable list of photos in one directory.
type Catalog struct {
	store       VoteStore
	retryConfig filesystem.RetryConfig

	mu         sync.RWMutex
	items      []Item
	sourceDir  string
	generation string

	listenersMu sync.Mutex
	listeners   []func(generation string)
}

// New creates an empty catalog. store may be nil, in which case votes are
// kept in memory only.
func New(store VoteStore) *Catalog {
	return &Catalog{
		store:       store,
		retryConfig: filesystem.DefaultRetryConfig(),
	}
}

// OnReload registers fn to run after every successful Open. Listeners run
// outside the catalog lock.
func (c *Catalog) OnReload(fn func(generation string)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Open loads dir, restores persisted votes and replaces the current
// contents. On error the previous contents stay in place.
func (c *Catalog) Open(ctx context.Context, dir string) (err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.CatalogLoadsTotal.WithLabelValues(status).Inc()
		metrics.CatalogLoadDuration.Observe(time.Since(start).Seconds())
	}()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}

	names, err := c.list(absDir)
	if err != nil {
		return err
	}

	votes := map[string]string{}
	if c.store != nil {
		votes, err = c.store.LoadVotes(ctx, absDir)
		if err != nil {
			return fmt.Errorf("load votes for %s: %w", absDir, err)
		}
	}

	items := make([]Item, len(names))
	restored := 0
	for i, name := range names {
		items[i] = Item{Name: name, Status: StatusPending}
		if saved, ok := votes[name]; ok {
			status, perr := ParseStatus(saved)
			if perr != nil {
				logging.Warn("Ignoring stored vote %q for %s: %v", saved, name, perr)
				continue
			}
			items[i].Status = status
			restored++
		}
	}

	generation := uuid.NewString()

	c.mu.Lock()
	c.items = items
	c.sourceDir = absDir
	c.generation = generation
	c.mu.Unlock()

	logging.Info("Opened %s: %d images, %d restored votes (generation %s)", absDir, len(items), restored, generation)

	c.notify(generation)
	return nil
}

// list returns the sorted image file names in dir.
func (c *Catalog) list(dir string) ([]string, error) {
	entries, err := filesystem.ReadDirWithRetry(dir, c.retryConfig)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !entry.Type().IsRegular() {
			continue
		}
		if !mediatypes.IsImageFile(name) {
			continue
		}
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})

	return names, nil
}

func (c *Catalog) notify(generation string) {
	c.listenersMu.Lock()
	listeners := append([]func(string){}, c.listeners...)
	c.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(generation)
	}
}

// Resolve returns the absolute path and display name of the photo at index.
func (c *Catalog) Resolve(index uint64) (string, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index >= uint64(len(c.items)) {
		return "", "", fmt.Errorf("%w: %d (catalog has %d items)", ErrIndexOutOfRange, index, len(c.items))
	}

	name := c.items[index].Name
	return filepath.Join(c.sourceDir, name), name, nil
}

// Vote records status for the photo at index and persists it. Persistence
// failures are logged; the in-memory decision stands.
func (c *Catalog) Vote(ctx context.Context, index uint64, status Status) (Item, error) {
	c.mu.Lock()
	if index >= uint64(len(c.items)) {
		n := len(c.items)
		c.mu.Unlock()
		return Item{}, fmt.Errorf("%w: %d (catalog has %d items)", ErrIndexOutOfRange, index, n)
	}

	next, err := c.items[index].Status.Vote(status)
	if err != nil {
		c.mu.Unlock()
		return Item{}, err
	}
	c.items[index].Status = next
	item := c.items[index]
	dir := c.sourceDir
	c.mu.Unlock()

	metrics.CatalogVotesTotal.WithLabelValues(next.String()).Inc()

	if c.store != nil {
		if err := c.store.SaveVote(ctx, dir, item.Name, next.String()); err != nil {
			logging.Error("Failed to persist vote %s for %s: %v", next, item.Name, err)
		}
	}

	return item, nil
}

// Len returns the number of photos.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Generation identifies the current load. It is empty before the first Open.
func (c *Catalog) Generation() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// SourceDir returns the loaded directory.
func (c *Catalog) SourceDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sourceDir
}

// Items returns a copy of the items.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.items...)
}

// Snapshot returns a consistent copy of items, directory and generation.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		SourceDir:  c.sourceDir,
		Generation: c.generation,
		Items:      append([]Item{}, c.items...),
	}
}

// Summary counts items per status.
func (c *Catalog) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return summarize(c.items)
}

func summarize(items []Item) Summary {
	s := Summary{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case StatusKeep:
			s.Keep++
		case StatusDelete:
			s.Delete++
		default:
			s.Pending++
		}
	}
	return s
}
