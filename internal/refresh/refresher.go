// Package refresh serialises fetch → render cycles so that only one runs at a time.
package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fieldpulse/internal/logger"
	"fieldpulse/internal/metrics"
	"fieldpulse/internal/scheduler"
)

// DefaultCooldown keeps the refresh gate closed briefly after a cycle completes.
const DefaultCooldown = 600 * time.Millisecond

// ErrBusy is returned while a refresh is running or cooling down.
var ErrBusy = errors.New("refresh in progress")

// Loader produces metrics for one cycle.
type Loader interface {
	Load(ctx context.Context) metrics.Metrics
}

// Renderer pushes metrics into the view.
type Renderer interface {
	Render(m *metrics.Metrics)
}

// Result describes a completed refresh cycle.
type Result struct {
	CycleID     string          `json:"cycleId"`
	RefreshedAt time.Time       `json:"refreshedAt"`
	Metrics     metrics.Metrics `json:"metrics"`
}

type Refresher struct {
	loader   Loader
	view     Renderer
	cooldown time.Duration

	busy atomic.Bool

	mu     sync.Mutex
	timer  *time.Timer
	last   *Result
	nowFn  func() time.Time
	closed bool
}

// New builds a Refresher. cooldown<0 disables the post-refresh cooldown.
func New(loader Loader, view Renderer, cooldown time.Duration) *Refresher {
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}
	if cooldown < 0 {
		cooldown = 0
	}
	return &Refresher{loader: loader, view: view, cooldown: cooldown, nowFn: time.Now}
}

// Refresh runs one cycle: the fetch completes before rendering starts.
// Overlapping calls get ErrBusy instead of queueing. A panicking cycle
// reopens the gate before the panic propagates.
func (r *Refresher) Refresh(ctx context.Context) (Result, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	if err := ctx.Err(); err != nil {
		r.busy.Store(false)
		return Result{}, err
	}

	defer func() {
		if p := recover(); p != nil {
			r.busy.Store(false)
			panic(p)
		}
	}()

	started := r.nowFn()
	m := r.loader.Load(ctx)
	if r.view != nil {
		r.view.Render(&m)
	}
	res := Result{CycleID: uuid.NewString(), RefreshedAt: r.nowFn(), Metrics: m.Clone()}

	r.mu.Lock()
	r.last = &res
	r.mu.Unlock()
	logger.Debugf("refresh %s done in %s (segments=%d points=%d)",
		res.CycleID, res.RefreshedAt.Sub(started), len(m.TopSegments), len(m.Engagement))

	r.release()
	return res, nil
}

func (r *Refresher) release() {
	if r.cooldown <= 0 {
		r.busy.Store(false)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.busy.Store(false)
		return
	}
	r.timer = time.AfterFunc(r.cooldown, func() { r.busy.Store(false) })
}

// Busy reports whether the refresh gate is currently closed.
func (r *Refresher) Busy() bool {
	return r.busy.Load()
}

// Current returns the last completed cycle, if any.
func (r *Refresher) Current() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Result{}, false
	}
	out := *r.last
	out.Metrics = r.last.Metrics.Clone()
	return out, true
}

// RunEvery refreshes on aligned interval ticks until ctx is done. Ticks that
// land while a manual refresh holds the gate are skipped.
func (r *Refresher) RunEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	sched := scheduler.NewAlignedScheduler("auto-refresh", interval, 0)
	sched.Start(ctx, func(ctx context.Context) {
		if _, err := r.Refresh(ctx); err != nil && !errors.Is(err, ErrBusy) {
			logger.Warnf("auto refresh failed: %v", err)
		}
	})
}

// Close stops a pending cooldown timer and reopens the gate.
func (r *Refresher) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.timer != nil && r.timer.Stop() {
		r.busy.Store(false)
	}
}
