package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GarrickZ2/grove-sub001/internal/grove/api"
)

// MenuItem is one entry of a task's context menu.
type MenuItem struct {
	Label    string
	Verb     Verb
	Disabled bool
}

// BuildMenu is a pure function from a task to its context menu. Archived
// tasks get a minimal menu; broken tasks keep the full menu with the
// branch-moving verbs disabled.
func BuildMenu(task api.Task, withRecover bool) []MenuItem {
	if task.Status == api.StatusArchived {
		var items []MenuItem
		if withRecover {
			items = append(items, MenuItem{Label: "Recover", Verb: VerbRecover})
		}
		return append(items, MenuItem{Label: "Clean", Verb: VerbClean})
	}
	broken := task.Status == api.StatusBroken
	return []MenuItem{
		{Label: "Commit", Verb: VerbCommit},
		{Label: "Sync", Verb: VerbSync, Disabled: broken},
		{Label: "Merge", Verb: VerbMerge, Disabled: broken},
		{Label: "Retarget", Verb: VerbRebase, Disabled: broken},
		{Label: "Archive", Verb: VerbArchive, Disabled: broken},
		{Label: "Reset", Verb: VerbReset},
		{Label: "Clean", Verb: VerbClean},
	}
}

type menuState struct {
	ref    api.TaskRef
	items  []MenuItem
	cursor int
}

// openMenu shows the context menu for ref. The caller has already made ref
// the active selection.
func (m *Model) openMenu(ref api.TaskRef) {
	m.menu = &menuState{ref: ref, items: BuildMenu(ref.Task, true)}
}

// invokeVerb routes a menu choice or hotkey through the single capability
// set of verb entry points.
func (m Model) invokeVerb(verb Verb, ref api.TaskRef) (tea.Model, tea.Cmd) {
	switch verb {
	case VerbCommit:
		return m.openCommitDialog(ref)
	case VerbSync:
		return m.startSync(ref)
	case VerbMerge:
		return m.startMerge(ref)
	case VerbRebase:
		return m.startRebase(ref)
	case VerbArchive:
		return m.startArchive(ref)
	case VerbRecover:
		return m.startRecover(ref)
	case VerbReset:
		return m.openResetDialog(ref)
	case VerbClean:
		return m.openCleanDialog(ref)
	}
	return m, nil
}

func (m Model) updateMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	menu := m.menu
	switch {
	case msg.Type == tea.KeyEsc:
		m.menu = nil
		return m, nil
	case key.Matches(msg, keys.Next):
		if menu.cursor < len(menu.items)-1 {
			menu.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.Prev):
		if menu.cursor > 0 {
			menu.cursor--
		}
		return m, nil
	case msg.Type == tea.KeyEnter:
		item := menu.items[menu.cursor]
		if item.Disabled {
			return m, nil
		}
		ref := menu.ref
		m.menu = nil
		return m.invokeVerb(item.Verb, ref)
	}
	return m, nil
}
