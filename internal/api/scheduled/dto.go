package scheduled

// CreateScheduledTaskRequest is the body of POST /scheduled-tasks.
type CreateScheduledTaskRequest struct {
	TaskName       string `json:"task_name" binding:"required"`
	Company        string `json:"company" binding:"required"`
	Code           string `json:"code" binding:"required"`
	Market         string `json:"market"`
	CronExpression string `json:"cron_expression" binding:"required"`
}
