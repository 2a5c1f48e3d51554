package client

import (
	"context"
	"sync"
	"testing"

	"report-console/internal/models"

	"github.com/stretchr/testify/assert"
)

type fakeScheduleGateway struct {
	mu      sync.Mutex
	tasks   []models.ScheduledTask
	creates []string // cron expressions as received
}

func (g *fakeScheduleGateway) CreateScheduledTask(ctx context.Context, name, company, code, market, cronExpression string) (models.ScheduledTask, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, task := range g.tasks {
		if task.Name == name {
			return models.ScheduledTask{}, &ConflictError{Detail: "a scheduled task with this name already exists"}
		}
	}
	g.creates = append(g.creates, cronExpression)
	task := models.ScheduledTask{
		Name: name, Company: company, Code: code, Market: market,
		CronExpression: cronExpression,
	}
	g.tasks = append(g.tasks, task)
	return task, nil
}

func (g *fakeScheduleGateway) ListScheduledTasks(ctx context.Context) ([]models.ScheduledTask, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.ScheduledTask, len(g.tasks))
	copy(out, g.tasks)
	return out, nil
}

func (g *fakeScheduleGateway) DeleteScheduledTask(ctx context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, task := range g.tasks {
		if task.Name == name {
			g.tasks = append(g.tasks[:i], g.tasks[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Detail: "scheduled task not found"}
}

func TestScheduleManagerCreateCanonicalizes(t *testing.T) {
	gw := &fakeScheduleGateway{}
	m := NewScheduleManager(gw, nil)

	created, err := m.Create(context.Background(), "daily", "ACME", "00020", "HK", "0 9 * * mon-fri")
	assert.NoError(t, err)
	assert.Equal(t, "0 9 * * MON-FRI", created.CronExpression)
	assert.Equal(t, []string{"0 9 * * MON-FRI"}, gw.creates)

	// Cached list refreshed after the create.
	cached := m.Cached()
	assert.Len(t, cached, 1)
	assert.Equal(t, "daily", cached[0].Name)
}

func TestScheduleManagerRejectsInvalidExpressionLocally(t *testing.T) {
	gw := &fakeScheduleGateway{}
	m := NewScheduleManager(gw, nil)

	var vErr *ValidationError
	_, err := m.Create(context.Background(), "daily", "ACME", "00020", "HK", "61 * * * *")
	assert.ErrorAs(t, err, &vErr)
	// The gateway was never called.
	assert.Empty(t, gw.creates)

	_, err = m.Create(context.Background(), "", "ACME", "00020", "HK", "0 9 * * *")
	assert.ErrorAs(t, err, &vErr)
}

func TestScheduleManagerCreateConflict(t *testing.T) {
	gw := &fakeScheduleGateway{}
	m := NewScheduleManager(gw, nil)
	ctx := context.Background()

	_, err := m.Create(ctx, "daily", "ACME", "00020", "HK", "0 9 * * *")
	assert.NoError(t, err)

	var cErr *ConflictError
	_, err = m.Create(ctx, "daily", "Other", "00001", "US", "0 10 * * *")
	assert.ErrorAs(t, err, &cErr)
}

func TestScheduleManagerDelete(t *testing.T) {
	gw := &fakeScheduleGateway{}
	m := NewScheduleManager(gw, nil)
	ctx := context.Background()

	_, err := m.Create(ctx, "daily", "ACME", "00020", "HK", "0 9 * * *")
	assert.NoError(t, err)

	assert.NoError(t, m.Delete(ctx, "daily"))
	assert.Empty(t, m.Cached())

	var nfErr *NotFoundError
	assert.ErrorAs(t, m.Delete(ctx, "daily"), &nfErr)
}

func TestScheduleManagerDeleteDeclined(t *testing.T) {
	gw := &fakeScheduleGateway{}
	declined := func(prompt string) bool { return false }
	m := NewScheduleManager(gw, declined)
	ctx := context.Background()

	created, err := gw.CreateScheduledTask(ctx, "daily", "ACME", "00020", "HK", "0 9 * * *")
	assert.NoError(t, err)
	assert.Equal(t, "daily", created.Name)

	assert.NoError(t, m.Delete(ctx, "daily"))
	list, err := m.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
}
