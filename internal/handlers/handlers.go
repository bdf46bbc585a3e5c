package handlers

import (
	"time"

	"photo-culler/internal/cache"
	"photo-culler/internal/catalog"
	"photo-culler/internal/database"
	"photo-culler/internal/delivery"
	"photo-culler/internal/memory"
	"photo-culler/internal/prefetch"
)

// Deps are the components the handlers serve.
type Deps struct {
	DB           *database.Database
	Catalog      *catalog.Catalog
	Cache        *cache.ResultCache
	Orchestrator *delivery.Orchestrator
	Scheduler    *prefetch.Scheduler
	Viewport     *delivery.Viewport
	Memory       *memory.Monitor
	Title        *TitleTracker
	Backend      string
	AuthEnabled  bool
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	db           *database.Database
	catalog      *catalog.Catalog
	cache        *cache.ResultCache
	orchestrator *delivery.Orchestrator
	scheduler    *prefetch.Scheduler
	viewport     *delivery.Viewport
	memory       *memory.Monitor
	title        *TitleTracker
	backend      string
	authEnabled  bool
	startTime    time.Time
}

// New creates the handlers. Memory and Title may be nil.
func New(deps Deps) *Handlers {
	title := deps.Title
	if title == nil {
		title = NewTitleTracker(deps.Catalog)
	}

	return &Handlers{
		db:           deps.DB,
		catalog:      deps.Catalog,
		cache:        deps.Cache,
		orchestrator: deps.Orchestrator,
		scheduler:    deps.Scheduler,
		viewport:     deps.Viewport,
		memory:       deps.Memory,
		title:        title,
		backend:      deps.Backend,
		authEnabled:  deps.AuthEnabled,
		startTime:    time.Now(),
	}
}
