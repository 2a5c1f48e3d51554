package models

// Wire shapes shared by the API handlers and the console client.

// ErrorResponse is the structured error body every API error carries.
// Detail is surfaced verbatim to the user when present.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse acknowledges a mutation.
type MessageResponse struct {
	Message string `json:"message"`
}

// SubmitResponse is returned by POST /reports/generate.
type SubmitResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskListResponse is returned by GET /tasks.
type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

// ScheduledTaskListResponse is returned by GET /scheduled-tasks.
type ScheduledTaskListResponse struct {
	Tasks []ScheduledTask `json:"tasks"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
