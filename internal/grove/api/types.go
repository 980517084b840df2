package api

import "time"

// TaskStatus is the lifecycle state of a worktree task.
type TaskStatus string

const (
	StatusLive     TaskStatus = "live"
	StatusIdle     TaskStatus = "idle"
	StatusMerged   TaskStatus = "merged"
	StatusConflict TaskStatus = "conflict"
	StatusBroken   TaskStatus = "broken"
	StatusArchived TaskStatus = "archived"
)

// Creator identifies who created a task.
type Creator string

const (
	CreatorUser  Creator = "user"
	CreatorAgent Creator = "agent"
)

// Commit is a single commit on a task branch.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author,omitempty"`
	Time    time.Time `json:"time"`
}

// Task represents one worktree bound to a feature branch.
type Task struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Branch       string     `json:"branch"`
	Target       string     `json:"target"`
	Status       TaskStatus `json:"status"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	FilesChanged int        `json:"files_changed"`
	Commits      []Commit   `json:"commits,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CreatedBy    Creator    `json:"created_by,omitempty"`
}

// IsActive reports whether the task is still in play (not archived).
func (t Task) IsActive() bool {
	return t.Status != StatusArchived
}

// CanOperate reports whether git lifecycle verbs (sync/merge/rebase) are
// allowed on the task.
func (t Task) CanOperate() bool {
	return t.IsActive() && t.Status != StatusBroken
}

// Project is a registered repository with its task collection.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	CurrentBranch string    `json:"current_branch"`
	Tasks         []Task    `json:"tasks"`
	AddedAt       time.Time `json:"added_at"`
}

// TaskRef is a task paired with the project it belongs to, used when
// aggregating tasks across projects.
type TaskRef struct {
	Task        Task
	ProjectID   string
	ProjectName string
}

// Key returns the stable ordering key for the referenced task.
func (r TaskRef) Key() string {
	return r.ProjectID + ":" + r.Task.ID
}

// OpResult is the server's answer to a mutating task operation. Success=false
// with a Message is a logical failure; transport failures are Go errors.
type OpResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CommitsInfo reports how many commits a task branch carries over its target.
type CommitsInfo struct {
	Total int `json:"total"`
}

// Branch is one branch of a project repository.
type Branch struct {
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
}

// BranchList is the server's branch inventory for a project.
type BranchList struct {
	Branches []Branch `json:"branches"`
	Current  string   `json:"current"`
}

// HookLevel is the severity of a notification entry.
type HookLevel string

const (
	HookCritical HookLevel = "critical"
	HookWarn     HookLevel = "warn"
	HookNotice   HookLevel = "notice"
)

// HookEntry is a server-raised attention flag for a (project, task) pair.
// The server guarantees at most one active entry per task.
type HookEntry struct {
	ProjectID string    `json:"project_id"`
	TaskID    string    `json:"task_id"`
	Level     HookLevel `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// MergeMethod selects how a task branch lands on its target.
type MergeMethod string

const (
	MergeSquash MergeMethod = "squash"
	MergeCommit MergeMethod = "merge-commit"
)
