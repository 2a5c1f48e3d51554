package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"report-console/internal/database"
	"report-console/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestEnv(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// An in-memory sqlite database lives per connection; keep the pool
	// at one so every query sees the migrated schema.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Task{}, &models.ScheduledTask{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	database.DB = db

	mr := miniredis.RunT(t)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

type stubGenerator struct {
	collectErr error
	renderErr  error
	outputPath string
}

func (g stubGenerator) CollectData(ctx context.Context, task *models.Task) error {
	return g.collectErr
}

func (g stubGenerator) RenderReport(ctx context.Context, task *models.Task) (string, error) {
	if g.renderErr != nil {
		return "", g.renderErr
	}
	return g.outputPath, nil
}

func TestCreateTaskEnqueues(t *testing.T) {
	setupTestEnv(t)

	task, err := CreateTask("ACME", "00020", "HK")
	assert.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.Nil(t, task.CompletedAt)

	queued, err := database.RedisClient.LRange(database.Ctx, TaskQueueKey, 0, -1).Result()
	assert.NoError(t, err)
	assert.Equal(t, []string{task.ID}, queued)
}

func TestListTasksFilterAndOrder(t *testing.T) {
	setupTestEnv(t)

	base := time.Now().Add(-time.Hour)
	seed := []models.Task{
		{ID: "t1", Company: "A", Status: models.TaskStatusPending, CreatedAt: base},
		{ID: "t2", Company: "B", Status: models.TaskStatusCompleted, CreatedAt: base.Add(time.Minute)},
		{ID: "t3", Company: "C", Status: models.TaskStatusPending, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		database.DB.Create(&seed[i])
	}

	all, err := ListTasks(nil)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	// Newest first
	assert.Equal(t, "t3", all[0].ID)
	assert.Equal(t, "t1", all[2].ID)

	pending := models.TaskStatusPending
	filtered, err := ListTasks(&pending)
	assert.NoError(t, err)
	assert.Len(t, filtered, 2)
	for _, task := range filtered {
		assert.Equal(t, models.TaskStatusPending, task.Status)
	}
}

func TestCancelTaskOnlyWhenPending(t *testing.T) {
	setupTestEnv(t)

	task, err := CreateTask("ACME", "00020", "HK")
	assert.NoError(t, err)

	cancelled, err := CancelTask(task.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, cancelled.Status)

	// Cancelling again is not a silent success.
	_, err = CancelTask(task.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	running := models.Task{ID: "r1", Status: models.TaskStatusRunning}
	database.DB.Create(&running)
	_, err = CancelTask("r1")
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = CancelTask("no-such-task")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProcessTaskCompletes(t *testing.T) {
	setupTestEnv(t)

	task, err := CreateTask("ACME", "00020", "HK")
	assert.NoError(t, err)

	processTask(context.Background(), stubGenerator{outputPath: "/tmp/report.docx"}, task.ID)

	got, err := GetTaskByID(task.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.NotNil(t, got.StartedAt)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, "/tmp/report.docx", got.OutputPath)
	assert.Empty(t, got.Error)
}

func TestProcessTaskFailure(t *testing.T) {
	setupTestEnv(t)

	task, err := CreateTask("ACME", "00020", "HK")
	assert.NoError(t, err)

	processTask(context.Background(), stubGenerator{collectErr: errors.New("market data unavailable")}, task.ID)

	got, err := GetTaskByID(task.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Equal(t, "market data unavailable", got.Error)
	assert.NotNil(t, got.CompletedAt)
}

func TestProcessTaskSkipsCancelled(t *testing.T) {
	setupTestEnv(t)

	task, err := CreateTask("ACME", "00020", "HK")
	assert.NoError(t, err)
	_, err = CancelTask(task.ID)
	assert.NoError(t, err)

	processTask(context.Background(), stubGenerator{outputPath: "/tmp/report.docx"}, task.ID)

	got, err := GetTaskByID(task.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, got.Status)
	assert.Equal(t, 0, got.Progress)
}

func TestWorkerDrainsQueue(t *testing.T) {
	setupTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go StartWorker(ctx, stubGenerator{outputPath: "/tmp/report.docx"})

	task, err := CreateTask("ACME", "00020", "HK")
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, err := GetTaskByID(task.ID)
		return err == nil && got.Status == models.TaskStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)
}
