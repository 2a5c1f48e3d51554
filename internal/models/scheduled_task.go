package models

import "time"

// ScheduledTask is a named recurring trigger. Each firing spawns an
// independent Task; the schedule itself has no execution lifecycle. The
// name doubles as the delete key. NextRunTime is owned by the scheduler.
type ScheduledTask struct {
	Name           string     `gorm:"primarykey" json:"name"`
	Company        string     `json:"company"`
	Code           string     `json:"code"`
	Market         string     `json:"market"`
	CronExpression string     `json:"cron_expression"`
	NextRunTime    *time.Time `json:"next_run_time"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TableName overrides the table name
func (ScheduledTask) TableName() string {
	return "scheduled_tasks"
}
