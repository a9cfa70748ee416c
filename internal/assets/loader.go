package assets

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/prt-relight/pkg/prt"
)

// Result reports the outcome of the most recent request.
type Result struct {
	ModelID    string
	Generation uint64
	Asset      *prt.Asset
	Err        error
}

// Loader installs assets in the background. Only the most recent request
// may install its asset; older ones are cancelled and their results dropped.
type Loader struct {
	mgr *Manager
	log *zap.Logger

	current atomic.Pointer[prt.Asset]
	gen     atomic.Uint64

	mu      sync.Mutex // guards cancel, lastErr and the install step
	cancel  context.CancelFunc
	lastErr error
	updates chan Result

	wg sync.WaitGroup
}

// NewLoader creates a loader on top of mgr.
func NewLoader(mgr *Manager, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		mgr:     mgr,
		log:     log,
		updates: make(chan Result, 1),
	}
}

// Current returns the installed asset, or nil before the first success.
func (l *Loader) Current() *prt.Asset {
	return l.current.Load()
}

// Generation returns the id of the latest request.
func (l *Loader) Generation() uint64 {
	return l.gen.Load()
}

// Err returns the error of the latest settled request, if it failed.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Updates delivers the result of each request that was still the latest
// when it settled. Only the newest undelivered result is kept.
func (l *Loader) Updates() <-chan Result {
	return l.updates
}

// Request starts loading modelID and supersedes any request in flight.
// It returns the request's generation.
func (l *Loader) Request(ctx context.Context, modelID string) uint64 {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	gen := l.gen.Add(1)
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	l.log.Debug("load requested", zap.String("model", modelID), zap.Uint64("generation", gen))

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()

		a, err := l.mgr.Load(ctx, modelID)
		l.settle(Result{ModelID: modelID, Generation: gen, Asset: a, Err: err})
	}()
	return gen
}

func (l *Loader) settle(r Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r.Generation != l.gen.Load() {
		l.log.Debug("dropping stale load",
			zap.String("model", r.ModelID),
			zap.Uint64("generation", r.Generation),
			zap.Uint64("latest", l.gen.Load()),
			zap.Error(r.Err))
		return
	}

	if r.Err != nil {
		l.lastErr = r.Err
		l.log.Warn("load failed, keeping previous asset", zap.String("model", r.ModelID), zap.Error(r.Err))
	} else {
		l.lastErr = nil
		l.current.Store(r.Asset)
		l.log.Info("asset installed", zap.String("model", r.ModelID), zap.Uint64("generation", r.Generation))
	}

	select {
	case <-l.updates:
	default:
	}
	l.updates <- r
}

// Wait blocks until every started request has settled.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Close cancels the request in flight and waits for it.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
	l.Wait()
}
