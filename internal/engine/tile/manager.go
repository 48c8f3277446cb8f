package tile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb/maptile"
	"go.uber.org/zap"

	"github.com/meridianmaps/meridian/internal/engine/geom"
	"github.com/meridianmaps/meridian/internal/engine/mesh"
	"github.com/meridianmaps/meridian/internal/engine/source"
)

// BuildFunc turns fetched tile features into per-style mesh data. It
// runs on fetch goroutines and must be safe for concurrent use.
type BuildFunc func(id maptile.Tile, data *geom.TileData) map[string]*mesh.Data

// Options configures a Manager.
type Options struct {
	Source   source.Source
	Build    BuildFunc
	Registry *mesh.Registry
	Log      *zap.Logger

	// MaxCached bounds the number of tracked tiles. Wanted tiles are
	// never evicted, so the bound can be exceeded while the visible set
	// itself is larger.
	MaxCached int

	// MaxRetries is how often a failed fetch is tried again.
	MaxRetries int

	// RetryDelay is the first retry's backoff; it doubles per attempt.
	RetryDelay time.Duration
}

// Manager owns every tracked tile and the goroutines fetching them.
//
// The render loop drives it from one thread: UpdateTileSet with the
// wanted set each frame, VisibleTiles for the draw list. Fetches fan out
// to a goroutine per tile and merge their results back under one lock.
type Manager struct {
	src   source.Source
	build BuildFunc
	reg   *mesh.Registry
	log   *zap.Logger

	maxCached  int
	maxRetries int
	retryDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	tiles  map[maptile.Tile]*MapTile
	wanted maptile.Tiles
	frame  uint64
}

// NewManager returns a manager ready for UpdateTileSet calls.
func NewManager(opts Options) *Manager {
	if opts.Build == nil {
		opts.Build = func(maptile.Tile, *geom.TileData) map[string]*mesh.Data { return nil }
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.MaxCached <= 0 {
		opts.MaxCached = 128
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		src:        opts.Source,
		build:      opts.Build,
		reg:        opts.Registry,
		log:        opts.Log,
		maxCached:  opts.MaxCached,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		ctx:        ctx,
		cancel:     cancel,
		tiles:      make(map[maptile.Tile]*MapTile),
	}
}

// UpdateTileSet reconciles the tracked tiles against the set the view
// needs right now. New tiles start fetching, tiles that left the set
// while still in flight are cancelled, and the cache is trimmed.
// Calling it again with an unchanged set does no work.
func (m *Manager) UpdateTileSet(wanted maptile.Set) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frame++

	m.wanted = m.wanted[:0]
	for id, ok := range wanted {
		if !ok {
			continue
		}
		m.wanted = append(m.wanted, id)
		t := m.tiles[id]
		switch {
		case t == nil:
			t = &MapTile{id: id}
			m.tiles[id] = t
			m.startFetch(t)
		case t.state == StateCancelled:
			// Wanted again after the view swung back.
			m.startFetch(t)
		case t.state == StateNotNeeded:
			// Still cached from the last visit; no fetch needed.
			t.state = StateLoaded
		}
		t.lastSeen = m.frame
	}
	sort.Sort(byID(m.wanted))

	for id, t := range m.tiles {
		if wanted[id] {
			continue
		}
		switch t.state {
		case StateRequested:
			t.state = StateCancelled
			if t.cancel != nil {
				t.cancel()
				t.cancel = nil
			}
		case StateLoaded:
			t.state = StateNotNeeded
		case StateFailed, StateCancelled:
			// Nothing worth caching; forget immediately so the retry
			// budget resets if the tile comes back.
			t.dispose()
			delete(m.tiles, id)
		}
	}

	m.evictLocked(wanted)
}

// startFetch moves the tile to requested and spawns its fetch goroutine.
// Caller holds the lock.
func (m *Manager) startFetch(t *MapTile) {
	ctx, cancel := context.WithCancel(m.ctx)
	t.state = StateRequested
	t.cancel = cancel
	m.wg.Add(1)
	go m.fetch(ctx, t)
}

// evictLocked drops least-recently-visible cached tiles until the cache
// fits. Wanted and in-flight tiles are kept.
func (m *Manager) evictLocked(wanted maptile.Set) {
	for len(m.tiles) > m.maxCached {
		var victim *MapTile
		for id, t := range m.tiles {
			if wanted[id] || t.state == StateRequested {
				continue
			}
			if victim == nil || t.lastSeen < victim.lastSeen {
				victim = t
			}
		}
		if victim == nil {
			return
		}
		m.log.Debug("evicting tile",
			zap.Uint32("x", victim.id.X),
			zap.Uint32("y", victim.id.Y),
			zap.Uint32("z", uint32(victim.id.Z)),
		)
		victim.dispose()
		delete(m.tiles, victim.id)
	}
}

// fetch retrieves and tessellates one tile, retrying transient failures
// with doubling backoff.
func (m *Manager) fetch(ctx context.Context, t *MapTile) {
	defer m.wg.Done()

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			delay := m.retryDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				m.finishCancelled(t)
				return
			case <-time.After(delay):
			}
		}

		data, err := m.src.Request(ctx, t.id)
		if err == nil {
			builds := m.build(t.id, data)
			m.finishLoaded(t, builds, time.Since(start))
			return
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			m.finishCancelled(t)
			return
		}
		lastErr = err
		m.log.Warn("tile fetch failed",
			zap.Uint32("x", t.id.X),
			zap.Uint32("y", t.id.Y),
			zap.Uint32("z", uint32(t.id.Z)),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	m.finishFailed(t, lastErr)
}

// current reports whether t is still the tracked tile for its address
// and still waiting on this fetch. Caller holds the lock.
func (m *Manager) current(t *MapTile) bool {
	return m.tiles[t.id] == t && t.state == StateRequested
}

func (m *Manager) finishLoaded(t *MapTile, builds map[string]*mesh.Data, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(t) {
		// Completed after cancellation; the result is stale.
		return
	}
	t.meshes = make(map[string]*mesh.Mesh, len(builds))
	for style, data := range builds {
		t.meshes[style] = mesh.New(data, m.reg)
	}
	t.state = StateLoaded
	t.cancel = nil
	m.log.Debug("tile loaded",
		zap.Uint32("x", t.id.X),
		zap.Uint32("y", t.id.Y),
		zap.Uint32("z", uint32(t.id.Z)),
		zap.Duration("took", took),
	)
}

func (m *Manager) finishCancelled(t *MapTile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tiles[t.id] != t {
		return
	}
	if t.state == StateRequested {
		t.state = StateCancelled
	}
	t.cancel = nil
}

func (m *Manager) finishFailed(t *MapTile, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(t) {
		return
	}
	t.state = StateFailed
	t.cancel = nil
	m.log.Error("tile failed",
		zap.Uint32("x", t.id.X),
		zap.Uint32("y", t.id.Y),
		zap.Uint32("z", uint32(t.id.Z)),
		zap.Error(err),
	)
}

// VisibleTiles returns the loaded tiles of the current wanted set in
// deterministic draw order.
func (m *Manager) VisibleTiles() []*MapTile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MapTile, 0, len(m.wanted))
	for _, id := range m.wanted {
		if t := m.tiles[id]; t != nil && t.state == StateLoaded {
			out = append(out, t)
		}
	}
	return out
}

// StateOf returns the state of a tracked tile.
func (m *Manager) StateOf(id maptile.Tile) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tiles[id]
	if !ok {
		return StateNotNeeded, false
	}
	return t.state, true
}

// Counts returns how many tiles are loaded, in flight, and tracked in
// total.
func (m *Manager) Counts() (loaded, pending, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tiles {
		switch t.state {
		case StateLoaded:
			loaded++
		case StateRequested:
			pending++
		}
	}
	return loaded, pending, len(m.tiles)
}

// Teardown cancels every in-flight fetch, waits for the workers, and
// frees all meshes. The manager must not be used afterwards. Needs the
// GL context current.
func (m *Manager) Teardown() {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tiles {
		t.dispose()
		delete(m.tiles, id)
	}
	m.wanted = nil
}

// byID orders tiles by zoom, then row, then column, so draw order is
// stable between frames.
type byID maptile.Tiles

func (s byID) Len() int      { return len(s) }
func (s byID) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byID) Less(i, j int) bool {
	a, b := s[i], s[j]
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}
