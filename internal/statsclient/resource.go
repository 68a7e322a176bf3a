package statsclient

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// State is a snapshot of a Resource. Data is only set in PhaseSuccess.
type State[T any] struct {
	Phase Phase  `json:"phase"`
	Data  T      `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s State[T]) Terminal() bool {
	return s.Phase != PhaseLoading
}

type FetchFunc[T any] func(ctx context.Context) (T, error)

// Resource performs a single fetch for one view activation. It starts in
// PhaseLoading and moves once to PhaseSuccess or PhaseError.
type Resource[T any] struct {
	name  string
	fetch FetchFunc[T]

	once   sync.Once
	done   chan struct{}
	mu     sync.RWMutex
	state  State[T]
	cancel context.CancelFunc
	closed bool
}

func NewResource[T any](name string, fetch FetchFunc[T]) *Resource[T] {
	return &Resource[T]{
		name:  name,
		fetch: fetch,
		done:  make(chan struct{}),
		state: State[T]{Phase: PhaseLoading},
	}
}

// Start issues the request. Calls after the first are no-ops.
func (r *Resource[T]) Start(ctx context.Context) {
	r.once.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		r.mu.Lock()
		r.cancel = cancel
		if r.closed {
			r.state = State[T]{Phase: PhaseError, Error: context.Canceled.Error()}
			r.mu.Unlock()
			cancel()
			close(r.done)
			return
		}
		r.mu.Unlock()

		go r.run(ctx, cancel)
	})
}

func (r *Resource[T]) run(ctx context.Context, cancel context.CancelFunc) {
	defer close(r.done)
	defer cancel()

	data, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = State[T]{Phase: PhaseError, Error: err.Error()}
		slog.Warn("remote fetch failed", "resource", r.name, "error", err)
		return
	}
	r.state = State[T]{Phase: PhaseSuccess, Data: data}
	slog.Debug("remote fetch complete", "resource", r.name)
}

func (r *Resource[T]) State() State[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Wait blocks until the resource is terminal or ctx is done.
func (r *Resource[T]) Wait(ctx context.Context) (State[T], error) {
	select {
	case <-r.done:
		return r.State(), nil
	case <-ctx.Done():
		return r.State(), ctx.Err()
	}
}

// Close cancels an in-flight request; the resource then settles in
// PhaseError. A resource closed before Start never issues its request.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	r.closed = true
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Dashboard is the pair of resources behind the dashboard header and chart.
type Dashboard struct {
	Stats      State[*models.Overview]       `json:"stats"`
	Categories State[[]models.CategorySlice] `json:"categories"`
}

// LoadDashboard fetches both dashboard resources concurrently and returns
// their terminal states. Cancelling ctx tears both requests down.
func (c *Client) LoadDashboard(ctx context.Context) Dashboard {
	stats := NewResource("stats", c.FetchStats)
	categories := NewResource("category_breakdown", c.FetchCategoryBreakdown)
	defer stats.Close()
	defer categories.Close()

	stats.Start(ctx)
	categories.Start(ctx)

	// Both settle once ctx is done since the requests carry it.
	s, _ := stats.Wait(context.Background())
	cat, _ := categories.Wait(context.Background())
	return Dashboard{Stats: s, Categories: cat}
}
