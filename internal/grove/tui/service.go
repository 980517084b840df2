package tui

import (
	"github.com/GarrickZ2/grove-sub001/internal/grove/api"
)

// TaskService is the slice of the grove server the controller consumes.
type TaskService interface {
	ListAllTasks() ([]api.TaskRef, error)
	CommitTask(projectID, taskID, message string) (api.OpResult, error)
	SyncTask(projectID, taskID string) (api.OpResult, error)
	GetCommits(projectID, taskID string) (api.CommitsInfo, error)
	MergeTask(projectID, taskID string, method api.MergeMethod) (api.OpResult, error)
	RebaseTask(projectID, taskID, newTarget string) (api.OpResult, error)
	GetBranches(projectID string) (api.BranchList, error)
	ArchiveTask(projectID, taskID string) (api.OpResult, error)
	RecoverTask(projectID, taskID string) (api.OpResult, error)
	ResetTask(projectID, taskID string) (api.OpResult, error)
	DeleteTask(projectID, taskID string) (api.OpResult, error)
}

// HookSource is the notification lookup the controller consumes. The poller
// in internal/grove/hooks implements it.
type HookSource interface {
	Lookup(taskID string) (api.HookEntry, bool)
	Entries() []api.HookEntry
	Dismiss(projectID, taskID string)
}

// Navigate is the upward callback to the hosting shell, used when a
// notification is activated to jump to a task and view mode.
type Navigate func(page string, data map[string]string)
