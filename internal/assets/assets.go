// Package assets loads transfer assets from local or remote sources, caches
// them by model id and installs them for the render loop.
package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/prt-relight/internal/config"
	"github.com/Faultbox/prt-relight/pkg/prt"
)

// ErrAssetLoad wraps every failure to produce an asset.
var ErrAssetLoad = errors.New("assets: load failed")

// Manager fetches, decodes and caches assets.
type Manager struct {
	sources []Source
	cache   *Cache
	pool    pond.Pool
	log     *zap.Logger
	mu      sync.RWMutex
}

// NewManager creates a manager that fetches at most workers parts at once.
func NewManager(workers int, log *zap.Logger) *Manager {
	if workers <= 0 {
		workers = len(Parts)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache: NewCache(),
		pool:  pond.NewPool(workers),
		log:   log,
	}
}

// NewManagerFromConfig creates a manager with the configured sources. The
// local directory, when set, takes priority over the HTTP base URL.
func NewManagerFromConfig(cfg config.AssetsConfig, log *zap.Logger) *Manager {
	m := NewManager(cfg.Workers, log)
	if cfg.BaseURL != "" {
		m.AddSource(NewHTTPSource(cfg.BaseURL, cfg.Timeout))
	}
	if cfg.Dir != "" {
		m.AddSource(NewDirSource(cfg.Dir))
	}
	return m
}

// Sources returns the number of registered sources.
func (m *Manager) Sources() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sources)
}

// AddSource adds a source to the manager.
// Sources are searched in reverse order (last added = highest priority).
func (m *Manager) AddSource(s Source) {
	m.mu.Lock()
	m.sources = append(m.sources, s)
	m.mu.Unlock()
}

// Cache returns the manager's asset cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Load returns the asset for modelID, from cache or from the first source
// that has it.
func (m *Manager) Load(ctx context.Context, modelID string) (*prt.Asset, error) {
	if a, ok := m.cache.Get(modelID); ok {
		return a, nil
	}

	m.mu.RLock()
	sources := append([]Source(nil), m.sources...)
	m.mu.RUnlock()

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: model %q: no sources configured", ErrAssetLoad, modelID)
	}

	var lastErr error
	for i := len(sources) - 1; i >= 0; i-- {
		payloads, err := m.fetchAll(ctx, sources[i], modelID)
		if errors.Is(err, ErrNotFound) {
			m.log.Debug("model not in source", zap.String("model", modelID), zap.Stringer("source", describe(sources[i])))
			lastErr = err
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: model %q: %w", ErrAssetLoad, modelID, err)
		}

		a, err := Decode(modelID, payloads)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
		}
		m.cache.Set(modelID, a)
		m.log.Info("asset decoded",
			zap.String("model", modelID),
			zap.Int("vertices", a.VertexCount()),
			zap.Int("triangles", a.TriangleCount()))
		return a, nil
	}

	return nil, fmt.Errorf("%w: model %q: %w", ErrAssetLoad, modelID, lastErr)
}

// fetchAll fetches every part in parallel. The first failure cancels the
// rest and is the error returned, so ErrNotFound survives the cancellation
// it causes.
func (m *Manager) fetchAll(ctx context.Context, src Source, modelID string) (Payloads, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
	)
	payloads := make(Payloads, len(Parts))

	group := m.pool.NewGroup()
	for _, part := range Parts {
		group.SubmitErr(func() error {
			data, err := src.Fetch(ctx, modelID, part)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				err = fmt.Errorf("part %s: %w", part, err)
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return err
			}
			payloads[part] = data
			return nil
		})
	}
	_ = group.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return payloads, nil
}

// Close stops the worker pool and clears the cache.
func (m *Manager) Close() {
	m.pool.StopAndWait()

	m.mu.Lock()
	m.sources = nil
	m.mu.Unlock()
	m.cache.Clear()
}

type stringer string

func (s stringer) String() string { return string(s) }

func describe(s Source) fmt.Stringer {
	if st, ok := s.(fmt.Stringer); ok {
		return st
	}
	return stringer(fmt.Sprintf("%T", s))
}

// Cache is a simple in-memory cache for decoded assets.
type Cache struct {
	data map[string]*prt.Asset
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*prt.Asset),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*prt.Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return a, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, a *prt.Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = a
}

// Len returns the number of cached assets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*prt.Asset)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
