package client

import (
	"context"
	"fmt"
	"sync"

	"report-console/internal/models"
	"report-console/pkg/cronexpr"
)

// ScheduleGateway is the slice of the gateway the manager needs.
type ScheduleGateway interface {
	CreateScheduledTask(ctx context.Context, name, company, code, market, cronExpression string) (models.ScheduledTask, error)
	ListScheduledTasks(ctx context.Context) ([]models.ScheduledTask, error)
	DeleteScheduledTask(ctx context.Context, name string) error
}

// ScheduleManager creates, lists and deletes recurring submissions.
// Expressions are validated and canonicalized locally before any
// network call; next_run_time is backend-owned and passed through
// unmodified.
type ScheduleManager struct {
	gateway ScheduleGateway
	confirm Confirmer

	mu    sync.Mutex
	tasks []models.ScheduledTask
}

// NewScheduleManager wires the manager. A nil confirm approves deletes.
func NewScheduleManager(gateway ScheduleGateway, confirm Confirmer) *ScheduleManager {
	return &ScheduleManager{
		gateway: gateway,
		confirm: confirm,
	}
}

// Create validates the expression, submits its canonical form and
// refreshes the cached list on success. An invalid expression never
// reaches the gateway.
func (m *ScheduleManager) Create(ctx context.Context, name, company, code, market, expression string) (models.ScheduledTask, error) {
	if name == "" {
		return models.ScheduledTask{}, &ValidationError{Reason: "task name is required"}
	}

	canonical, err := cronexpr.Canonical(expression)
	if err != nil {
		return models.ScheduledTask{}, &ValidationError{Reason: fmt.Sprintf("invalid cron expression: %v", err)}
	}

	task, err := m.gateway.CreateScheduledTask(ctx, name, company, code, market, canonical)
	if err != nil {
		return models.ScheduledTask{}, err
	}

	m.refresh(ctx)
	return task, nil
}

// Delete removes a schedule by name after confirmation, then refreshes
// the cached list.
func (m *ScheduleManager) Delete(ctx context.Context, name string) error {
	if m.confirm != nil && !m.confirm(fmt.Sprintf("delete scheduled task %q?", name)) {
		return nil
	}

	if err := m.gateway.DeleteScheduledTask(ctx, name); err != nil {
		return err
	}

	m.refresh(ctx)
	return nil
}

// List fetches the current schedules, caches them and returns them.
func (m *ScheduleManager) List(ctx context.Context) ([]models.ScheduledTask, error) {
	tasks, err := m.gateway.ListScheduledTasks(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.tasks = tasks
	m.mu.Unlock()
	return tasks, nil
}

// Cached returns a copy of the most recently fetched schedule list.
func (m *ScheduleManager) Cached() []models.ScheduledTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ScheduledTask, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// refresh is best-effort: the mutation already succeeded, a failed
// re-list just leaves the previous cache in place.
func (m *ScheduleManager) refresh(ctx context.Context) {
	if tasks, err := m.gateway.ListScheduledTasks(ctx); err == nil {
		m.mu.Lock()
		m.tasks = tasks
		m.mu.Unlock()
	}
}
