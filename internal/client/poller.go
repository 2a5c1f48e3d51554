package client

import (
	"context"
	"sync"
	"time"

	"report-console/internal/models"
)

// DefaultPollInterval matches the console's refresh cadence.
const DefaultPollInterval = 3 * time.Second

// TaskLister is the slice of the gateway the poller depends on.
type TaskLister interface {
	ListTasks(ctx context.Context, statusFilter string) ([]models.Task, error)
}

// Poller maintains a live snapshot of the task list, refreshed on a
// fixed cadence and on demand. The snapshot is owned here: consumers
// get copies and every mutation flows through the backend.
//
// Polling is a sampling process, not an event stream; overlapping
// requests are resolved by discarding any response that is not from the
// most recently issued request, so a slow response can never overwrite
// a fresher snapshot.
type Poller struct {
	lister   TaskLister
	interval time.Duration

	mu       sync.Mutex
	filter   string
	snapshot []models.Task
	lastErr  error
	issued   uint64 // sequence of the most recently issued request

	stop chan struct{}
	done chan struct{}
}

func NewPoller(lister TaskLister, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		lister:   lister,
		interval: interval,
	}
}

// Start launches the polling loop. Calling Start on a running poller is
// a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop(p.stop, p.done)
}

// Stop tears the loop down and waits for it to exit. In-flight requests
// are abandoned; their responses are discarded. Safe to call twice.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (p *Poller) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	go p.poll(ctx)

	for {
		select {
		case <-ticker.C:
			// Each poll runs in its own goroutine so a slow backend
			// never blocks the timer.
			go p.poll(ctx)
		case <-stop:
			return
		}
	}
}

// Refresh polls immediately, outside the timer cadence. The staleness
// rule still applies: if a newer request is issued while this one is in
// flight, this response is discarded.
func (p *Poller) Refresh(ctx context.Context) error {
	return p.poll(ctx)
}

// SetFilter replaces the status filter and refreshes immediately under
// it. The previous snapshot is replaced, never merged.
func (p *Poller) SetFilter(ctx context.Context, status string) error {
	p.mu.Lock()
	p.filter = status
	p.mu.Unlock()
	return p.poll(ctx)
}

// Snapshot returns a copy of the most recently applied task list.
func (p *Poller) Snapshot() []models.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Task, len(p.snapshot))
	copy(out, p.snapshot)
	return out
}

// Filter returns the active status filter ("" means all).
func (p *Poller) Filter() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// LastError returns the transient error of the latest applied poll, or
// nil after a success. A failed poll leaves the snapshot intact.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Poller) poll(ctx context.Context) error {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	filter := p.filter
	p.mu.Unlock()

	tasks, err := p.lister.ListTasks(ctx, filter)

	p.mu.Lock()
	defer p.mu.Unlock()

	// A newer request was issued while this one was in flight; its
	// response wins regardless of arrival order.
	if seq != p.issued {
		return nil
	}

	if err != nil {
		p.lastErr = err
		return err
	}

	p.snapshot = tasks
	p.lastErr = nil
	return nil
}
