package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GarrickZ2/grove-sub001/internal/grove/api"
)

// cascadeState is the post-merge sub-machine: after a successful merge the
// user decides whether to archive the merged task now or keep it.
type cascadeState struct {
	awaiting  bool
	projectID string
	taskID    string
	taskName  string
}

func (c *cascadeState) enter(projectID, taskID, taskName string) {
	c.awaiting = true
	c.projectID = projectID
	c.taskID = taskID
	c.taskName = taskName
}

func (c *cascadeState) reset() {
	*c = cascadeState{}
}

// updateCascadeKey handles the archive-or-keep decision. Both choices run
// the cleanup (clear selection, return to List); archive failures surface as
// a toast but do not undo the cleanup.
func (m Model) updateCascadeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "a", "y", "enter":
		ref := api.TaskRef{
			Task:      api.Task{ID: m.cascade.taskID, Name: m.cascade.taskName},
			ProjectID: m.cascade.projectID,
		}
		m.cascade.reset()
		m.clearSelection()
		svc := m.svc
		return m, func() tea.Msg {
			result, err := svc.ArchiveTask(ref.ProjectID, ref.Task.ID)
			return opResultMsg{ref: ref, verb: VerbArchive, result: result, err: err, cascade: true}
		}
	case "k", "n", "esc":
		m.cascade.reset()
		m.clearSelection()
		return m, nil
	}
	return m, nil
}
