// Package api is the HTTP collaborator of the core: it fetches the
// initial artifact snapshot on project load and issues the generate,
// cancel and feedback commands that return a run identifier.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRunConflict is returned when the backend rejects a command because a
// run is already active for the project.
var ErrRunConflict = errors.New("another run is already in progress")

// Error carries a non-2xx backend response.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// Client talks to the backend REST API. The zero retry policy is
// deliberate: retries belong to callers that know command semantics.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client against base, e.g. "http://localhost:8000".
func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Project is the backend's project record.
type Project struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Story    string `json:"story,omitempty"`
	Style    string `json:"style,omitempty"`
	Summary  string `json:"summary,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Status   string `json:"status"`
}

// RunInfo is the backend's run record returned by generate and feedback.
type RunInfo struct {
	ID           int64   `json:"id"`
	ProjectID    int64   `json:"project_id"`
	Status       string  `json:"status"`
	CurrentAgent string  `json:"current_agent,omitempty"`
	Progress     float64 `json:"progress"`
	Error        string  `json:"error,omitempty"`
}

// MessageRecord is a persisted chat-log entry as served over HTTP.
// The REST shape uses is_loading where the stream uses isLoading.
type MessageRecord struct {
	ID        int64    `json:"id"`
	ProjectID int64    `json:"project_id"`
	RunID     int64    `json:"run_id,omitempty"`
	Agent     string   `json:"agent"`
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Progress  *float64 `json:"progress,omitempty"`
	IsLoading bool     `json:"is_loading"`
	CreatedAt string   `json:"created_at"`
}

// GenerateRequest is the body of the generate command.
type GenerateRequest struct {
	Seed  *int64 `json:"seed,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// CancelResult reports how many queued or running runs were cancelled.
type CancelResult struct {
	Status    string `json:"status"`
	Cancelled int    `json:"cancelled"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusConflict {
			return ErrRunConflict
		}
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&detail)
		return &Error{Status: resp.StatusCode, Detail: detail.Detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// Project fetches one project record.
func (c *Client) Project(ctx context.Context, projectID int64) (*Project, error) {
	var p Project
	if err := c.get(ctx, fmt.Sprintf("/api/v1/projects/%d", projectID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Generate starts a fresh pipeline run and returns its run record.
func (c *Client) Generate(ctx context.Context, projectID int64, req GenerateRequest) (*RunInfo, error) {
	var info RunInfo
	if err := c.post(ctx, fmt.Sprintf("/api/v1/projects/%d/generate", projectID), req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Cancel stops the project's active run, if any.
func (c *Client) Cancel(ctx context.Context, projectID int64) (*CancelResult, error) {
	var res CancelResult
	if err := c.post(ctx, fmt.Sprintf("/api/v1/projects/%d/cancel", projectID), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Feedback queues a review-routed run for the user's feedback text.
func (c *Client) Feedback(ctx context.Context, projectID int64, content string, runID int64) (*RunInfo, error) {
	body := struct {
		Content string `json:"content"`
		RunID   int64  `json:"run_id,omitempty"`
	}{Content: content, RunID: runID}
	var info RunInfo
	if err := c.post(ctx, fmt.Sprintf("/api/v1/projects/%d/feedback", projectID), body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GenerateWithRetry optimistically recovers from a command conflict with
// one automatic cancel-and-retry before surfacing the conflict.
func (c *Client) GenerateWithRetry(ctx context.Context, projectID int64, req GenerateRequest) (*RunInfo, error) {
	info, err := c.Generate(ctx, projectID, req)
	if !errors.Is(err, ErrRunConflict) {
		return info, err
	}
	if _, err := c.Cancel(ctx, projectID); err != nil {
		return nil, fmt.Errorf("cancel before retry: %w", err)
	}
	return c.Generate(ctx, projectID, req)
}

// FeedbackWithRetry applies the same single cancel-and-retry recovery to
// the feedback command.
func (c *Client) FeedbackWithRetry(ctx context.Context, projectID int64, content string, runID int64) (*RunInfo, error) {
	info, err := c.Feedback(ctx, projectID, content, runID)
	if !errors.Is(err, ErrRunConflict) {
		return info, err
	}
	if _, err := c.Cancel(ctx, projectID); err != nil {
		return nil, fmt.Errorf("cancel before retry: %w", err)
	}
	return c.Feedback(ctx, projectID, content, runID)
}
