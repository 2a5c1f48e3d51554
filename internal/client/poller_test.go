package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"report-console/internal/models"

	"github.com/stretchr/testify/assert"
)

// queueLister hands each ListTasks call to the test, which decides when
// and with what to answer. This makes reordered completions reproducible.
type listReply struct {
	tasks []models.Task
	err   error
}

type listCall struct {
	filter string
	reply  chan listReply
}

type queueLister struct {
	calls chan *listCall
}

func newQueueLister() *queueLister {
	return &queueLister{calls: make(chan *listCall, 16)}
}

func (l *queueLister) ListTasks(ctx context.Context, filter string) ([]models.Task, error) {
	call := &listCall{filter: filter, reply: make(chan listReply, 1)}
	l.calls <- call
	r := <-call.reply
	return r.tasks, r.err
}

// staticLister answers immediately, filtering a fixed task set.
type staticLister struct {
	mu    sync.Mutex
	tasks []models.Task
	err   error
	calls int
}

func (l *staticLister) ListTasks(ctx context.Context, filter string) ([]models.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	if filter == "" {
		return l.tasks, nil
	}
	var out []models.Task
	for _, task := range l.tasks {
		if task.Status == models.TaskStatus(filter) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (l *staticLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestPollerStaleResponseDiscarded(t *testing.T) {
	lister := newQueueLister()
	p := NewPoller(lister, time.Hour) // cadence irrelevant, driven manually
	ctx := context.Background()

	go p.Refresh(ctx)
	slow := <-lister.calls

	go p.Refresh(ctx)
	fresh := <-lister.calls

	// The newer request completes first.
	fresh.reply <- listReply{tasks: []models.Task{{ID: "t2", Status: models.TaskStatusRunning}}}
	assert.Eventually(t, func() bool {
		snap := p.Snapshot()
		return len(snap) == 1 && snap[0].ID == "t2"
	}, time.Second, 5*time.Millisecond)

	// The older request resolves late; its response must be discarded.
	slow.reply <- listReply{tasks: []models.Task{{ID: "t1", Status: models.TaskStatusPending}}}
	time.Sleep(50 * time.Millisecond)

	snap := p.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, "t2", snap[0].ID)
}

func TestPollerFilterReplacesSnapshot(t *testing.T) {
	lister := &staticLister{tasks: []models.Task{
		{ID: "t1", Status: models.TaskStatusPending},
		{ID: "t2", Status: models.TaskStatusCompleted},
		{ID: "t3", Status: models.TaskStatusCompleted},
	}}
	p := NewPoller(lister, time.Hour)
	ctx := context.Background()

	assert.NoError(t, p.Refresh(ctx))
	assert.Len(t, p.Snapshot(), 3)

	assert.NoError(t, p.SetFilter(ctx, "completed"))
	assert.Equal(t, "completed", p.Filter())
	snap := p.Snapshot()
	assert.Len(t, snap, 2)
	for _, task := range snap {
		assert.Equal(t, models.TaskStatusCompleted, task.Status)
	}

	assert.NoError(t, p.SetFilter(ctx, ""))
	assert.Len(t, p.Snapshot(), 3)
}

func TestPollerFailureKeepsSnapshot(t *testing.T) {
	lister := &staticLister{tasks: []models.Task{{ID: "t1", Status: models.TaskStatusPending}}}
	p := NewPoller(lister, time.Hour)
	ctx := context.Background()

	assert.NoError(t, p.Refresh(ctx))
	assert.Len(t, p.Snapshot(), 1)
	assert.NoError(t, p.LastError())

	lister.mu.Lock()
	lister.err = errors.New("backend unreachable")
	lister.mu.Unlock()

	assert.Error(t, p.Refresh(ctx))
	// Stale-but-valid snapshot retained, error surfaced.
	assert.Len(t, p.Snapshot(), 1)
	assert.Error(t, p.LastError())

	lister.mu.Lock()
	lister.err = nil
	lister.mu.Unlock()

	assert.NoError(t, p.Refresh(ctx))
	assert.NoError(t, p.LastError())
}

func TestPollerStartStop(t *testing.T) {
	lister := &staticLister{tasks: []models.Task{{ID: "t1", Status: models.TaskStatusPending}}}
	p := NewPoller(lister, 10*time.Millisecond)

	p.Start()
	p.Start() // idempotent

	assert.Eventually(t, func() bool {
		return lister.callCount() >= 3 && len(p.Snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop() // idempotent

	// Let any in-flight poll drain, then verify the timer is gone.
	time.Sleep(30 * time.Millisecond)
	settled := lister.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, lister.callCount())
}

func TestPollerDefaultInterval(t *testing.T) {
	p := NewPoller(&staticLister{}, 0)
	assert.Equal(t, DefaultPollInterval, p.interval)
}
