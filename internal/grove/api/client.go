// Package api provides typed access to the grove server's task API.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client provides typed access to the grove server.
type Client struct {
	baseURL       string
	defaultTarget string
	httpClient    *http.Client
}

// NewClient creates a client for the grove server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithDefaultTarget makes ListAllTasks aggregate against target instead of
// each project's current branch.
func (c *Client) WithDefaultTarget(target string) *Client {
	c.defaultTarget = target
	return c
}

// request helpers

func (c *Client) get(path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	resp, err := c.httpClient.Get(u)
	if err != nil {
		slog.Debug("request failed", "method", "GET", "path", path, "error", err)
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		slog.Debug("request rejected", "method", "GET", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) post(path string, body, result any) error {
	u := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	resp, err := c.httpClient.Post(u, "application/json", reqBody)
	if err != nil {
		slog.Debug("request failed", "method", "POST", "path", path, "error", err)
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Debug("request rejected", "method", "POST", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("POST %s: %d %s", path, resp.StatusCode, string(respBody))
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) delete(path string, result any) error {
	u := c.baseURL + path

	req, err := http.NewRequest(http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("request failed", "method", "DELETE", "path", path, "error", err)
		return fmt.Errorf("DELETE %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Debug("request rejected", "method", "DELETE", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("DELETE %s: %d %s", path, resp.StatusCode, string(respBody))
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func taskPath(projectID, taskID string) string {
	return fmt.Sprintf("/api/projects/%s/tasks/%s", url.PathEscape(projectID), url.PathEscape(taskID))
}

// Projects and tasks

// ListProjects returns all registered projects with their task collections.
func (c *Client) ListProjects() ([]Project, error) {
	var projects []Project
	if err := c.get("/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns one project with its task collection.
func (c *Client) GetProject(projectID string) (Project, error) {
	var project Project
	if err := c.get("/api/projects/"+url.PathEscape(projectID), nil, &project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// ListTasks returns the tasks of one project, optionally filtered by status.
func (c *Client) ListTasks(projectID, filter string) ([]Task, error) {
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	var tasks []Task
	if err := c.get("/api/projects/"+url.PathEscape(projectID)+"/tasks", query, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListAllTasks aggregates tasks across every project. Only tasks whose target
// equals their project's current branch and that are not archived are
// included.
func (c *Client) ListAllTasks() ([]TaskRef, error) {
	projects, err := c.ListProjects()
	if err != nil {
		return nil, err
	}
	var refs []TaskRef
	for _, p := range projects {
		target := p.CurrentBranch
		if c.defaultTarget != "" {
			target = c.defaultTarget
		}
		for _, t := range p.Tasks {
			if t.Status == StatusArchived {
				continue
			}
			if t.Target != target {
				continue
			}
			refs = append(refs, TaskRef{Task: t, ProjectID: p.ID, ProjectName: p.Name})
		}
	}
	return refs, nil
}

// Task lifecycle operations

// CommitTask commits the task worktree's pending changes with message.
func (c *Client) CommitTask(projectID, taskID, message string) (OpResult, error) {
	var result OpResult
	body := map[string]string{"message": message}
	if err := c.post(taskPath(projectID, taskID)+"/commit", body, &result); err != nil {
		return OpResult{}, err
	}
	return result, nil
}

// SyncTask syncs the task branch with its target branch.
func (c *Client) SyncTask(projectID, taskID string) (OpResult, error) {
	var result OpResult
	if err := c.post(taskPath(projectID, taskID)+"/sync", nil, &result); err != nil {
		return OpResult{}, err
	}
	return result, nil
}

// GetCommits reports the task branch's commit count over its target.
func (c *Client) GetCommits(projectID, taskID string) (CommitsInfo, error) {
	var info CommitsInfo
	if err := c.get(taskPath(projectID, taskID)+"/commits", nil, &info); err != nil {
		return CommitsInfo{}, err
	}
	return info, nil
}

// MergeTask merges the task branch into its target using method.
func (c *Client) MergeTask(projectID, taskID string, method MergeMethod) (OpResult, error) {
	var result OpResult
	body := map[string]string{"method": string(method)}
	if err := c.post(taskPath(projectID, taskID)+"/merge", body, &result); err != nil {
		return OpResult{}, err
	}
	return result, nil
}

// RebaseTask retargets the task branch onto newTarget.
func (c *Client) RebaseTask(projectID, taskID, newTarget string) (OpResult, error) {
	var result OpResult
	body := map[string]string{"target": newTarget}
	if err := c.post(taskPath(projectID, taskID)+"/rebase", body, &result); err != nil {
		return OpResult{}, err
	}
	return result, nil
}

// GetBranches lists the branches of a project repository.
func (c *Client) GetBranches(projectID string) (BranchList, error) {
	var branches BranchList
	if err := c.get("/api/projects/"+url.PathEscape(projectID)+"/branches", nil, &branches); err != nil {
		return BranchList{}, err
	}
	return branches, nil
}

// ArchiveTask archives the task, retiring its worktree.
func (c *Client) ArchiveTask(projectID, taskID string) (OpResult, error) {
	var result OpResult
	if err := c.post(taskPath(projectID, taskID)+"/archive", nil, &result); err != nil {
		return OpResult{}, err
	}
	return result, nil
}

// RecoverTask restores an archived task.
func (c *Client) RecoverTask(projectID, taskID string) (OpResult, error) {
	var result OpResult
	if err := c.post(taskPath(projectID, taskID)+"/recover", nil, &result); err != nil {
		return OpResult{}, err
	}
	return result, nil
}

// ResetTask discards the task worktree's uncommitted changes.
func (c *Client) ResetTask(projectID, taskID string) (OpResult, error) {
	var result OpResult
	if err := c.post(taskPath(projectID, taskID)+"/reset", nil, &result); err != nil {
		return OpResult{}, err
	}
	return result, nil
}

// DeleteTask removes the task and its worktree entirely.
func (c *Client) DeleteTask(projectID, taskID string) (OpResult, error) {
	var result OpResult
	if err := c.delete(taskPath(projectID, taskID), &result); err != nil {
		return OpResult{}, err
	}
	return result, nil
}

// Hooks

// ListAllHooks returns every active notification entry across projects.
func (c *Client) ListAllHooks() ([]HookEntry, error) {
	var entries []HookEntry
	if err := c.get("/api/hooks", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DismissHook clears the notification entry for a (project, task) pair.
func (c *Client) DismissHook(projectID, taskID string) error {
	return c.post(taskPath(projectID, taskID)+"/hook/dismiss", nil, nil)
}
