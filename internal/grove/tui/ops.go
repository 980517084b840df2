package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GarrickZ2/grove-sub001/internal/grove/api"
)

// Verb is one of the guarded asynchronous git lifecycle operations.
type Verb string

const (
	VerbCommit  Verb = "commit"
	VerbSync    Verb = "sync"
	VerbMerge   Verb = "merge"
	VerbRebase  Verb = "rebase"
	VerbArchive Verb = "archive"
	VerbRecover Verb = "recover"
	VerbReset   Verb = "reset"
	VerbClean   Verb = "clean"
)

// dialogKey identifies per-verb dialog state by task identity, so an
// in-flight result can never bleed into another task's dialog.
type dialogKey struct {
	taskKey string
	verb    Verb
}

// dialogState is one verb's dialog record for one task. loading survives a
// close so a discarded response still clears its own flag.
type dialogState struct {
	ref     api.TaskRef
	open    bool
	loading bool
	err     string

	// merge
	methodCursor int
	direct       bool

	// rebase
	branches     []string
	branchCursor int
	target       string
}

func dlgKey(ref api.TaskRef, verb Verb) dialogKey {
	return dialogKey{taskKey: ref.Key(), verb: verb}
}

// Result and staging messages. Every message carries the task it was issued
// for.
type opResultMsg struct {
	ref     api.TaskRef
	verb    Verb
	result  api.OpResult
	err     error
	cascade bool
}

type commitsCountMsg struct {
	ref   api.TaskRef
	total int
	err   error
}

type branchesMsg struct {
	ref  api.TaskRef
	list api.BranchList
	err  error
}

type cascadeEnterMsg struct {
	projectID string
	taskID    string
	taskName  string
}

// openDialog returns the dialog currently shown, preferring the active
// selection's.
func (m Model) openDialog() (dialogKey, *dialogState, bool) {
	if m.selected != nil {
		for dk, dlg := range m.dialogs {
			if dlg.open && dk.taskKey == m.selected.Key() {
				return dk, dlg, true
			}
		}
	}
	for dk, dlg := range m.dialogs {
		if dlg.open {
			return dk, dlg, true
		}
	}
	return dialogKey{}, nil, false
}

func (m Model) verbLoading(ref api.TaskRef, verb Verb) bool {
	dlg := m.dialogs[dlgKey(ref, verb)]
	return dlg != nil && dlg.loading
}

// closeOtherDialogs hides dialogs that belong to a different task, keeping
// their records so late results can still clear loading flags.
func (m *Model) closeOtherDialogs(ref api.TaskRef) {
	for dk, dlg := range m.dialogs {
		if dk.taskKey != ref.Key() {
			dlg.open = false
		}
	}
}

// Verb entry points. Each resets its own loading/error state on open and
// refuses to start while a call for the same (task, verb) is in flight.

func (m Model) openCommitDialog(ref api.TaskRef) (tea.Model, tea.Cmd) {
	if !ref.Task.IsActive() || m.verbLoading(ref, VerbCommit) {
		return m, nil
	}
	m.closeOtherDialogs(ref)
	m.dialogs[dlgKey(ref, VerbCommit)] = &dialogState{ref: ref, open: true}
	m.commitInput.SetValue("")
	m.commitInput.Focus()
	return m, nil
}

func (m Model) startSync(ref api.TaskRef) (tea.Model, tea.Cmd) {
	if !ref.Task.CanOperate() || m.verbLoading(ref, VerbSync) {
		return m, nil
	}
	m.dialogs[dlgKey(ref, VerbSync)] = &dialogState{ref: ref, loading: true}
	return m, m.callVerb(ref, VerbSync, func() (api.OpResult, error) {
		return m.svc.SyncTask(ref.ProjectID, ref.Task.ID)
	})
}

// startMerge fetches the commit count first. One commit merges directly with
// a merge commit; more than one (or a failed count fetch) opens the method
// chooser.
func (m Model) startMerge(ref api.TaskRef) (tea.Model, tea.Cmd) {
	if !ref.Task.CanOperate() || m.verbLoading(ref, VerbMerge) {
		return m, nil
	}
	m.dialogs[dlgKey(ref, VerbMerge)] = &dialogState{ref: ref, loading: true}
	svc := m.svc
	return m, func() tea.Msg {
		info, err := svc.GetCommits(ref.ProjectID, ref.Task.ID)
		return commitsCountMsg{ref: ref, total: info.Total, err: err}
	}
}

func (m Model) handleCommitsCount(msg commitsCountMsg) (tea.Model, tea.Cmd) {
	dk := dlgKey(msg.ref, VerbMerge)
	dlg := m.dialogs[dk]
	if dlg == nil {
		return m, nil
	}
	dlg.loading = false
	if msg.err == nil && msg.total <= 1 {
		dlg.direct = true
		dlg.loading = true
		ref := msg.ref
		return m, m.callMerge(ref, api.MergeCommit)
	}
	m.closeOtherDialogs(msg.ref)
	dlg.open = true
	dlg.err = ""
	dlg.methodCursor = 0
	return m, nil
}

func (m Model) submitMerge(dlg *dialogState, method api.MergeMethod) (tea.Model, tea.Cmd) {
	if dlg.loading {
		return m, nil
	}
	dlg.loading = true
	dlg.err = ""
	return m, m.callMerge(dlg.ref, method)
}

func (m Model) callMerge(ref api.TaskRef, method api.MergeMethod) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		result, err := svc.MergeTask(ref.ProjectID, ref.Task.ID, method)
		return opResultMsg{ref: ref, verb: VerbMerge, result: result, err: err}
	}
}

// startRebase fetches the available branches first; a fetch failure aborts
// with a toast.
func (m Model) startRebase(ref api.TaskRef) (tea.Model, tea.Cmd) {
	if !ref.Task.CanOperate() || m.verbLoading(ref, VerbRebase) {
		return m, nil
	}
	m.dialogs[dlgKey(ref, VerbRebase)] = &dialogState{ref: ref, loading: true}
	svc := m.svc
	return m, func() tea.Msg {
		list, err := svc.GetBranches(ref.ProjectID)
		return branchesMsg{ref: ref, list: list, err: err}
	}
}

func (m Model) handleBranches(msg branchesMsg) (tea.Model, tea.Cmd) {
	dk := dlgKey(msg.ref, VerbRebase)
	dlg := m.dialogs[dk]
	if dlg == nil {
		return m, nil
	}
	dlg.loading = false
	if msg.err != nil {
		delete(m.dialogs, dk)
		return m, m.showToast("Failed to load branches")
	}
	branches := make([]string, 0, len(msg.list.Branches))
	cursor := 0
	for _, b := range msg.list.Branches {
		if b.Name == msg.ref.Task.Branch {
			continue
		}
		if b.Name == msg.ref.Task.Target {
			cursor = len(branches)
		}
		branches = append(branches, b.Name)
	}
	if len(branches) == 0 {
		delete(m.dialogs, dk)
		return m, m.showToast("No branches available")
	}
	m.closeOtherDialogs(msg.ref)
	dlg.open = true
	dlg.err = ""
	dlg.branches = branches
	dlg.branchCursor = cursor
	return m, nil
}

func (m Model) submitRebase(dlg *dialogState, newTarget string) (tea.Model, tea.Cmd) {
	if dlg.loading {
		return m, nil
	}
	dlg.loading = true
	dlg.err = ""
	dlg.target = newTarget
	ref := dlg.ref
	svc := m.svc
	return m, func() tea.Msg {
		result, err := svc.RebaseTask(ref.ProjectID, ref.Task.ID, newTarget)
		return opResultMsg{ref: ref, verb: VerbRebase, result: result, err: err}
	}
}

func (m Model) startArchive(ref api.TaskRef) (tea.Model, tea.Cmd) {
	if !ref.Task.IsActive() || m.verbLoading(ref, VerbArchive) {
		return m, nil
	}
	m.dialogs[dlgKey(ref, VerbArchive)] = &dialogState{ref: ref, loading: true}
	return m, m.callVerb(ref, VerbArchive, func() (api.OpResult, error) {
		return m.svc.ArchiveTask(ref.ProjectID, ref.Task.ID)
	})
}

func (m Model) startRecover(ref api.TaskRef) (tea.Model, tea.Cmd) {
	if ref.Task.Status != api.StatusArchived || m.verbLoading(ref, VerbRecover) {
		return m, nil
	}
	m.dialogs[dlgKey(ref, VerbRecover)] = &dialogState{ref: ref, loading: true}
	return m, m.callVerb(ref, VerbRecover, func() (api.OpResult, error) {
		return m.svc.RecoverTask(ref.ProjectID, ref.Task.ID)
	})
}

func (m Model) openResetDialog(ref api.TaskRef) (tea.Model, tea.Cmd) {
	if !ref.Task.IsActive() || m.verbLoading(ref, VerbReset) {
		return m, nil
	}
	m.closeOtherDialogs(ref)
	m.dialogs[dlgKey(ref, VerbReset)] = &dialogState{ref: ref, open: true}
	return m, nil
}

func (m Model) openCleanDialog(ref api.TaskRef) (tea.Model, tea.Cmd) {
	if m.verbLoading(ref, VerbClean) {
		return m, nil
	}
	m.closeOtherDialogs(ref)
	m.dialogs[dlgKey(ref, VerbClean)] = &dialogState{ref: ref, open: true}
	return m, nil
}

func (m Model) confirmReset(dlg *dialogState) (tea.Model, tea.Cmd) {
	if dlg.loading {
		return m, nil
	}
	dlg.loading = true
	ref := dlg.ref
	return m, m.callVerb(ref, VerbReset, func() (api.OpResult, error) {
		return m.svc.ResetTask(ref.ProjectID, ref.Task.ID)
	})
}

func (m Model) confirmClean(dlg *dialogState) (tea.Model, tea.Cmd) {
	if dlg.loading {
		return m, nil
	}
	dlg.loading = true
	ref := dlg.ref
	return m, m.callVerb(ref, VerbClean, func() (api.OpResult, error) {
		return m.svc.DeleteTask(ref.ProjectID, ref.Task.ID)
	})
}

func (m Model) callVerb(ref api.TaskRef, verb Verb, call func() (api.OpResult, error)) tea.Cmd {
	return func() tea.Msg {
		result, err := call()
		return opResultMsg{ref: ref, verb: verb, result: result, err: err}
	}
}

// submitCommit sends the commit with the entered message.
func (m Model) submitCommit(dlg *dialogState) (tea.Model, tea.Cmd) {
	message := m.commitInput.Value()
	if dlg.loading || message == "" {
		return m, nil
	}
	dlg.loading = true
	dlg.err = ""
	ref := dlg.ref
	svc := m.svc
	return m, func() tea.Msg {
		result, err := svc.CommitTask(ref.ProjectID, ref.Task.ID, message)
		return opResultMsg{ref: ref, verb: VerbCommit, result: result, err: err}
	}
}

// updateDialogKey routes keys into the open dialog.
func (m Model) updateDialogKey(msg tea.KeyMsg, dk dialogKey, dlg *dialogState) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		// Closing mid-request discards the eventual response except for
		// its own loading flag.
		dlg.open = false
		if !dlg.loading {
			delete(m.dialogs, dk)
		}
		return m, nil
	}

	switch dk.verb {
	case VerbCommit:
		if msg.Type == tea.KeyEnter {
			return m.submitCommit(dlg)
		}
		var cmd tea.Cmd
		m.commitInput, cmd = m.commitInput.Update(msg)
		return m, cmd

	case VerbMerge:
		switch msg.String() {
		case "j", "down", "k", "up", "left", "right", "tab":
			dlg.methodCursor = 1 - dlg.methodCursor
			return m, nil
		case "enter":
			method := api.MergeSquash
			if dlg.methodCursor == 1 {
				method = api.MergeCommit
			}
			return m.submitMerge(dlg, method)
		}
		return m, nil

	case VerbRebase:
		switch msg.String() {
		case "j", "down":
			if dlg.branchCursor < len(dlg.branches)-1 {
				dlg.branchCursor++
			}
			return m, nil
		case "k", "up":
			if dlg.branchCursor > 0 {
				dlg.branchCursor--
			}
			return m, nil
		case "enter":
			if len(dlg.branches) == 0 {
				return m, nil
			}
			return m.submitRebase(dlg, dlg.branches[dlg.branchCursor])
		}
		return m, nil

	case VerbReset:
		switch msg.String() {
		case "y", "enter":
			return m.confirmReset(dlg)
		case "n":
			dlg.open = false
			delete(m.dialogs, dk)
			return m, nil
		}
		return m, nil

	case VerbClean:
		switch msg.String() {
		case "y", "enter":
			return m.confirmClean(dlg)
		case "n":
			dlg.open = false
			delete(m.dialogs, dk)
			return m, nil
		}
		return m, nil
	}
	return m, nil
}

// handleOpResult applies a verb result. The result is matched to its dialog
// by (task, verb); a response for a dialog the user already closed only
// clears the loading flag.
func (m Model) handleOpResult(msg opResultMsg) (tea.Model, tea.Cmd) {
	dk := dlgKey(msg.ref, msg.verb)
	dlg := m.dialogs[dk]
	if dlg != nil {
		dlg.loading = false
	}

	switch msg.verb {
	case VerbCommit:
		if dlg == nil || !dlg.open {
			delete(m.dialogs, dk)
			return m, nil
		}
		if msg.err != nil {
			dlg.err = "Failed to commit"
			return m, nil
		}
		if !msg.result.Success {
			dlg.err = fallback(msg.result.Message, "Commit failed")
			return m, nil
		}
		delete(m.dialogs, dk)
		return m, tea.Batch(m.showToast(fallback(msg.result.Message, "Committed")), m.refresh())

	case VerbSync:
		delete(m.dialogs, dk)
		if msg.err != nil {
			return m, m.showToast("Failed to sync")
		}
		if !msg.result.Success {
			return m, m.showToast(fallback(msg.result.Message, "Sync failed"))
		}
		return m, tea.Batch(m.showToast(fallback(msg.result.Message, "Synced")), m.refresh())

	case VerbMerge:
		return m.handleMergeResult(msg, dk, dlg)

	case VerbRebase:
		delete(m.dialogs, dk)
		if msg.err != nil {
			return m, m.showToast("Failed to retarget")
		}
		if !msg.result.Success {
			return m, m.showToast(fallback(msg.result.Message, "Retarget failed"))
		}
		target := ""
		if dlg != nil {
			target = dlg.target
		}
		m.patchTarget(msg.ref, target)
		return m, tea.Batch(m.showToast(fallback(msg.result.Message, "Retargeted")), m.refresh())

	case VerbArchive:
		delete(m.dialogs, dk)
		if msg.err != nil {
			return m, m.showToast("Failed to archive")
		}
		if !msg.result.Success {
			return m, m.showToast(fallback(msg.result.Message, "Archive failed"))
		}
		if !msg.cascade {
			m.clearSelection()
		}
		return m, tea.Batch(m.showToast(fallback(msg.result.Message, "Archived")), m.refresh())

	case VerbRecover:
		delete(m.dialogs, dk)
		if msg.err != nil {
			return m, m.showToast("Failed to recover")
		}
		if !msg.result.Success {
			return m, m.showToast(fallback(msg.result.Message, "Recover failed"))
		}
		return m, tea.Batch(m.showToast(fallback(msg.result.Message, "Recovered")), m.refresh())

	case VerbReset:
		// A confirmation closed mid-request discards the response.
		if dlg == nil || !dlg.open {
			delete(m.dialogs, dk)
			return m, nil
		}
		delete(m.dialogs, dk)
		if msg.err != nil {
			return m, m.showToast("Failed to reset")
		}
		// The selection stays on the current task either way.
		cmds := []tea.Cmd{m.showToast(fallback(msg.result.Message, "Reset"))}
		if msg.result.Success {
			cmds = append(cmds, m.refresh())
		}
		return m, tea.Batch(cmds...)

	case VerbClean:
		if dlg == nil || !dlg.open {
			delete(m.dialogs, dk)
			return m, nil
		}
		delete(m.dialogs, dk)
		if msg.err != nil {
			return m, m.showToast("Failed to clean")
		}
		if !msg.result.Success {
			return m, m.showToast(fallback(msg.result.Message, "Clean failed"))
		}
		m.clearSelection()
		return m, tea.Batch(m.showToast(fallback(msg.result.Message, "Cleaned")), m.refresh())
	}
	return m, nil
}

func (m Model) handleMergeResult(msg opResultMsg, dk dialogKey, dlg *dialogState) (tea.Model, tea.Cmd) {
	// A chooser the user already closed discards the response; the direct
	// path never opened one.
	discarded := dlg == nil || (!dlg.open && !dlg.direct)
	if msg.err != nil {
		if dlg != nil && dlg.open {
			dlg.err = "Failed to merge"
			return m, nil
		}
		delete(m.dialogs, dk)
		return m, m.showToast("Failed to merge")
	}
	if !msg.result.Success {
		if dlg != nil && dlg.open {
			dlg.err = fallback(msg.result.Message, "Merge failed")
			return m, nil
		}
		delete(m.dialogs, dk)
		return m, m.showToast(fallback(msg.result.Message, "Merge failed"))
	}
	delete(m.dialogs, dk)
	if discarded {
		return m, nil
	}
	ref := msg.ref
	// The post-merge cascade must see the refreshed list, so it is entered
	// only after the refresh completes.
	return m, tea.Batch(
		m.showToast(fallback(msg.result.Message, "Merged")),
		tea.Sequence(
			m.refresh(),
			func() tea.Msg {
				return cascadeEnterMsg{projectID: ref.ProjectID, taskID: ref.Task.ID, taskName: ref.Task.Name}
			},
		),
	)
}

// patchTarget optimistically applies a successful retarget to the local
// mirrors. A later failed refresh does not roll it back; the next successful
// refresh wins.
func (m *Model) patchTarget(ref api.TaskRef, target string) {
	if target == "" {
		return
	}
	for i := range m.refs {
		if m.refs[i].Key() == ref.Key() {
			m.refs[i].Task.Target = target
		}
	}
	for i := range m.visible {
		if m.visible[i].Key() == ref.Key() {
			m.visible[i].Task.Target = target
		}
	}
	if m.selected != nil && m.selected.Key() == ref.Key() {
		m.selected.Task.Target = target
	}
}

func fallback(message, alt string) string {
	if message != "" {
		return message
	}
	return alt
}
