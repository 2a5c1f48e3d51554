package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"report-console/internal/database"
	"report-console/internal/models"
	"report-console/pkg/cronexpr"
	"report-console/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrScheduleExists   = errors.New("a scheduled task with this name already exists")
	ErrScheduleNotFound = errors.New("scheduled task not found")
)

// Scheduler owns the recurring report submissions. Each firing creates
// an independent Task through CreateTask; the schedule itself never
// changes state on its own.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
	}
}

// Start reloads persisted schedules and starts the cron loop.
func (s *Scheduler) Start() error {
	var tasks []models.ScheduledTask
	if err := database.DB.Find(&tasks).Error; err != nil {
		return fmt.Errorf("failed to load scheduled tasks: %w", err)
	}

	for i := range tasks {
		if err := s.register(&tasks[i]); err != nil {
			logger.Log.Warn("skipping persisted schedule",
				zap.String("name", tasks[i].Name), zap.Error(err))
		}
	}

	s.cron.Start()
	logger.Log.Info("scheduler started", zap.Int("schedules", len(tasks)))
	return nil
}

// Stop halts the cron loop. Running firings complete on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.Log.Info("scheduler stopped")
}

// Create validates the expression, persists the schedule under its
// canonical form and registers the cron entry. The name must be unique.
func (s *Scheduler) Create(name, company, code, market, expr string) (*models.ScheduledTask, error) {
	canonical, err := cronexpr.Canonical(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	var existing models.ScheduledTask
	if err := database.DB.First(&existing, "name = ?", name).Error; err == nil {
		return nil, ErrScheduleExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	task := models.ScheduledTask{
		Name:           name,
		Company:        company,
		Code:           code,
		Market:         market,
		CronExpression: canonical,
	}
	if next, err := cronexpr.Next(canonical, time.Now()); err == nil {
		task.NextRunTime = &next
	}

	if err := s.register(&task); err != nil {
		return nil, err
	}

	if err := database.DB.Create(&task).Error; err != nil {
		s.remove(name)
		return nil, err
	}

	logger.Log.Info("scheduled task created",
		zap.String("name", name), zap.String("cron", canonical))
	return &task, nil
}

// Delete removes the cron entry and the persisted schedule.
func (s *Scheduler) Delete(name string) error {
	var task models.ScheduledTask
	if err := database.DB.First(&task, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}

	s.remove(name)
	if err := database.DB.Delete(&task).Error; err != nil {
		return err
	}

	logger.Log.Info("scheduled task deleted", zap.String("name", name))
	return nil
}

// List returns all schedules, oldest first.
func (s *Scheduler) List() ([]models.ScheduledTask, error) {
	var tasks []models.ScheduledTask
	if err := database.DB.Order("created_at asc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Scheduler) register(task *models.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.entries[task.Name]; exists {
		s.cron.Remove(entryID)
		delete(s.entries, task.Name)
	}

	name := task.Name
	entryID, err := s.cron.AddFunc(task.CronExpression, func() {
		s.fire(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron entry: %w", err)
	}
	s.entries[task.Name] = entryID
	return nil
}

func (s *Scheduler) remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.entries[name]; exists {
		s.cron.Remove(entryID)
		delete(s.entries, name)
	}
}

func (s *Scheduler) fire(name string) {
	var schedule models.ScheduledTask
	if err := database.DB.First(&schedule, "name = ?", name).Error; err != nil {
		logger.Log.Warn("fired schedule no longer exists", zap.String("name", name))
		s.remove(name)
		return
	}

	task, err := CreateTask(schedule.Company, schedule.Code, schedule.Market)
	if err != nil {
		logger.Log.Warn("scheduled submission failed",
			zap.String("name", name), zap.Error(err))
	} else {
		logger.Log.Info("scheduled submission",
			zap.String("name", name), zap.String("task_id", task.ID))
	}

	if next, err := cronexpr.Next(schedule.CronExpression, time.Now()); err == nil {
		schedule.NextRunTime = &next
		database.DB.Save(&schedule)
	}
}
