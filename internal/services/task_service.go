package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"report-console/internal/database"
	"report-console/internal/models"
	"report-console/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const TaskQueueKey = "report_task_queue"

// ErrNotPending is returned when cancelling a task that has already
// started or settled.
var ErrNotPending = errors.New("only pending tasks can be cancelled")

// CreateTask persists a new pending task and enqueues it for the worker.
func CreateTask(company, code, market string) (*models.Task, error) {
	task := models.Task{
		ID:       uuid.New().String(),
		Company:  company,
		Code:     code,
		Market:   market,
		Status:   models.TaskStatusPending,
		Progress: 0,
	}

	if err := database.DB.Create(&task).Error; err != nil {
		return nil, err
	}

	if err := database.RedisClient.RPush(database.Ctx, TaskQueueKey, task.ID).Err(); err != nil {
		return &task, fmt.Errorf("task created but not enqueued: %w", err)
	}

	logger.Log.Info("task created",
		zap.String("task_id", task.ID),
		zap.String("company", company),
		zap.String("market", market))
	return &task, nil
}

// GetTaskByID retrieves a single task by ID
func GetTaskByID(id string) (*models.Task, error) {
	var task models.Task
	if err := database.DB.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks retrieves tasks, newest first, optionally restricted to one status.
func ListTasks(status *models.TaskStatus) ([]models.Task, error) {
	db := database.DB.Model(&models.Task{})
	if status != nil {
		db = db.Where("status = ?", *status)
	}

	var tasks []models.Task
	if err := db.Order("created_at desc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CancelTask cancels a pending task. Tasks in any other state are
// rejected with ErrNotPending; the worker skips cancelled tasks.
func CancelTask(id string) (*models.Task, error) {
	var task models.Task
	if err := database.DB.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if task.Status != models.TaskStatusPending {
		return nil, ErrNotPending
	}

	task.Status = models.TaskStatusCancelled
	if err := database.DB.Save(&task).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("task cancelled", zap.String("task_id", task.ID))
	return &task, nil
}

// StartWorker consumes the task queue until ctx is cancelled.
func StartWorker(ctx context.Context, gen Generator) {
	logger.Log.Info("task worker started")
	for {
		result, err := database.RedisClient.BLPop(ctx, time.Second, TaskQueueKey).Result()
		if err != nil {
			if ctx.Err() != nil {
				logger.Log.Info("task worker stopped")
				return
			}
			if !errors.Is(err, redis.Nil) {
				logger.Log.Warn("task queue pop failed", zap.Error(err))
				time.Sleep(time.Second) // Prevent tight loop on error
			}
			continue
		}

		// result[0] is the key, result[1] is the task ID
		go processTask(ctx, gen, result[1])
	}
}

func processTask(ctx context.Context, gen Generator, taskID string) {
	var task models.Task
	if err := database.DB.First(&task, "id = ?", taskID).Error; err != nil {
		logger.Log.Warn("queued task not found", zap.String("task_id", taskID), zap.Error(err))
		return
	}

	// Cancelled while queued, or a duplicate queue entry.
	if task.Status != models.TaskStatusPending {
		return
	}

	now := time.Now()
	task.Status = models.TaskStatusRunning
	task.StartedAt = &now
	database.DB.Save(&task)

	logger.Log.Info("task running", zap.String("task_id", task.ID))

	setProgress(&task, 10)
	if err := gen.CollectData(ctx, &task); err != nil {
		failTask(&task, err)
		return
	}

	setProgress(&task, 50)
	path, err := gen.RenderReport(ctx, &task)
	if err != nil {
		failTask(&task, err)
		return
	}

	completed := time.Now()
	task.Status = models.TaskStatusCompleted
	task.Progress = 100
	task.CompletedAt = &completed
	task.OutputPath = path
	database.DB.Save(&task)

	logger.Log.Info("task completed", zap.String("task_id", task.ID), zap.String("output", path))
}

func setProgress(task *models.Task, progress int) {
	task.Progress = progress
	database.DB.Save(task)
}

func failTask(task *models.Task, err error) {
	completed := time.Now()
	task.Status = models.TaskStatusFailed
	task.Error = err.Error()
	task.CompletedAt = &completed
	database.DB.Save(task)

	logger.Log.Warn("task failed", zap.String("task_id", task.ID), zap.Error(err))
}
