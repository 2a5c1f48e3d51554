package models

import "time"

// TaskStatus defines the lifecycle state of a report generation task.
// pending -> running -> {completed | failed}; pending -> cancelled only
// via explicit cancellation. Terminal states never transition again.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// Task represents one report generation job. The backend owns every
// field; clients hold read-only copies replaced wholesale on each poll.
type Task struct {
	ID          string     `gorm:"primarykey" json:"id"`
	Company     string     `json:"company"`
	Code        string     `json:"code"`
	Market      string     `json:"market"`
	Status      TaskStatus `gorm:"index" json:"status"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	OutputPath  string     `json:"-"`
}

// TableName overrides the table name
func (Task) TableName() string {
	return "tasks"
}

// Markets a report subject can be listed on.
const (
	MarketHK = "HK"
	MarketA  = "A"
	MarketUS = "US"
)

// ValidMarket reports whether m is a supported market.
func ValidMarket(m string) bool {
	return m == MarketHK || m == MarketA || m == MarketUS
}
