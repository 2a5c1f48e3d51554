package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"report-console/internal/models"
	"report-console/internal/utils"
)

// Gateway is the typed request/response boundary to the backend. Every
// method is a single round trip: no caching, no retries — retry policy
// belongs to callers.
type Gateway struct {
	baseURL string
	http    *http.Client
}

// NewGateway creates a gateway against baseURL (e.g. "http://host:8000/api").
func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    utils.NewHTTPClient(timeout),
	}
}

// SubmitReport submits a report generation job and returns the task ID.
func (g *Gateway) SubmitReport(ctx context.Context, company, code, market string) (string, error) {
	if company == "" {
		return "", &ValidationError{Reason: "company is required"}
	}
	if code == "" {
		return "", &ValidationError{Reason: "code is required"}
	}
	if !models.ValidMarket(market) {
		return "", &ValidationError{Reason: fmt.Sprintf("unsupported market %q", market)}
	}

	body := map[string]string{"company": company, "code": code, "market": market}
	resp, err := g.send(ctx, http.MethodPost, "/reports/generate", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", g.apiError(resp)
	}

	var out models.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ServerError{StatusCode: resp.StatusCode, Detail: "malformed response body"}
	}
	return out.TaskID, nil
}

// GetTask fetches a single task by ID.
func (g *Gateway) GetTask(ctx context.Context, id string) (models.Task, error) {
	resp, err := g.send(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil)
	if err != nil {
		return models.Task{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Task{}, g.apiError(resp)
	}

	var task models.Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return models.Task{}, &ServerError{StatusCode: resp.StatusCode, Detail: "malformed response body"}
	}
	return task, nil
}

// ListTasks fetches the task list, optionally restricted to one status.
// An empty statusFilter returns all tasks, in backend order.
func (g *Gateway) ListTasks(ctx context.Context, statusFilter string) ([]models.Task, error) {
	path := "/tasks"
	if statusFilter != "" {
		path += "?status=" + url.QueryEscape(statusFilter)
	}

	resp, err := g.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, g.apiError(resp)
	}

	var out models.TaskListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ServerError{StatusCode: resp.StatusCode, Detail: "malformed response body"}
	}
	return out.Tasks, nil
}

// CancelTask cancels a pending task. A task in any other state yields
// an InvalidStateError, including repeat cancels of a settled task.
func (g *Gateway) CancelTask(ctx context.Context, id string) error {
	resp, err := g.send(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/cancel", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return &InvalidStateError{Detail: g.detail(resp, "task cannot be cancelled in its current state")}
	default:
		return g.apiError(resp)
	}
}

// FetchArtifact downloads the artifact of a completed task and returns
// its content with a suggested filename.
func (g *Gateway) FetchArtifact(ctx context.Context, id string) ([]byte, string, error) {
	resp, err := g.send(ctx, http.MethodGet, "/reports/"+url.PathEscape(id)+"/download", nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusNotFound:
		// Not completed and unknown task both mean "no artifact here".
		return nil, "", &NotFoundError{Detail: g.detail(resp, "report not available")}
	default:
		return nil, "", g.apiError(resp)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &NetworkError{Op: "read artifact", Err: err}
	}

	filename := fmt.Sprintf("research_report_%s.docx", id)
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	}
	return content, filename, nil
}

// CreateScheduledTask registers a recurring submission under a unique name.
func (g *Gateway) CreateScheduledTask(ctx context.Context, name, company, code, market, cronExpression string) (models.ScheduledTask, error) {
	if name == "" {
		return models.ScheduledTask{}, &ValidationError{Reason: "task name is required"}
	}

	body := map[string]string{
		"task_name":       name,
		"company":         company,
		"code":            code,
		"market":          market,
		"cron_expression": cronExpression,
	}
	resp, err := g.send(ctx, http.MethodPost, "/scheduled-tasks", body)
	if err != nil {
		return models.ScheduledTask{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return models.ScheduledTask{}, &ValidationError{Reason: g.detail(resp, "invalid scheduled task")}
	default:
		return models.ScheduledTask{}, g.apiError(resp)
	}

	var task models.ScheduledTask
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return models.ScheduledTask{}, &ServerError{StatusCode: resp.StatusCode, Detail: "malformed response body"}
	}
	return task, nil
}

// ListScheduledTasks fetches all scheduled tasks.
func (g *Gateway) ListScheduledTasks(ctx context.Context) ([]models.ScheduledTask, error) {
	resp, err := g.send(ctx, http.MethodGet, "/scheduled-tasks", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, g.apiError(resp)
	}

	var out models.ScheduledTaskListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ServerError{StatusCode: resp.StatusCode, Detail: "malformed response body"}
	}
	return out.Tasks, nil
}

// DeleteScheduledTask removes a schedule by name.
func (g *Gateway) DeleteScheduledTask(ctx context.Context, name string) error {
	resp, err := g.send(ctx, http.MethodDelete, "/scheduled-tasks/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return g.apiError(resp)
	}
	return nil
}

// Health checks backend liveness.
func (g *Gateway) Health(ctx context.Context) error {
	resp, err := g.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return g.apiError(resp)
	}
	return nil
}

func (g *Gateway) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: fmt.Sprintf("%s %s", method, path), Err: err}
	}
	return resp, nil
}

// apiError maps a non-2xx response onto the error taxonomy, carrying
// the backend's detail message verbatim when present.
func (g *Gateway) apiError(resp *http.Response) error {
	detail := g.detail(resp, "request failed")

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &NotFoundError{Detail: detail}
	case http.StatusConflict:
		return &ConflictError{Detail: detail}
	default:
		return &ServerError{StatusCode: resp.StatusCode, Detail: detail}
	}
}

func (g *Gateway) detail(resp *http.Response, fallback string) string {
	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return fallback
}
