package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/GarrickZ2/grove-sub001/internal/grove/api"
)

var errFake = errors.New("connection refused")

// runCmd executes a pending command and feeds its message back into the model.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	return press(t, m, cmd())
}

func TestCommitSuccess(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		result: api.OpResult{Success: true, Message: "Committed 3 files"},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, _ = press(t, m, keyRune('c'))
	m.commitInput.SetValue("fix the flaky retry")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = runCmd(t, m, cmd)

	if _, _, ok := m.openDialog(); ok {
		t.Fatalf("expected dialog closed after success")
	}
	if m.toast != "Committed 3 files" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	want := "commit p1:t1 fix the flaky retry"
	if svc.calls[len(svc.calls)-1] != want {
		t.Fatalf("expected %q, got %v", want, svc.calls)
	}
}

func TestCommitEmptyMessageRefused(t *testing.T) {
	svc := &fakeService{refs: []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)}}
	m := newTestModel(t, svc, &fakeHooks{})

	m, _ = press(t, m, keyRune('c'))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("empty commit message must not submit")
	}
	if _, _, ok := m.openDialog(); !ok {
		t.Fatalf("dialog should stay open")
	}
}

func TestCommitLogicalFailureStaysOpen(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		result: api.OpResult{Success: false, Message: "nothing to commit"},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, _ = press(t, m, keyRune('c'))
	m.commitInput.SetValue("wip")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = runCmd(t, m, cmd)

	_, dlg, ok := m.openDialog()
	if !ok {
		t.Fatalf("expected dialog still open after logical failure")
	}
	if dlg.err != "nothing to commit" {
		t.Fatalf("expected inline server message, got %q", dlg.err)
	}
	if dlg.loading {
		t.Fatalf("loading must be cleared")
	}
	if m.toast != "" {
		t.Fatalf("logical failure must not toast, got %q", m.toast)
	}
}

func TestCommitTransportFailureInline(t *testing.T) {
	svc := &fakeService{
		refs: []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		err:  errFake,
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, _ = press(t, m, keyRune('c'))
	m.commitInput.SetValue("wip")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = runCmd(t, m, cmd)

	_, dlg, ok := m.openDialog()
	if !ok || dlg.err != "Failed to commit" {
		t.Fatalf("expected generic inline error, got %+v", dlg)
	}
}

func TestCommitClosedMidRequestDiscardsResult(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, _ = press(t, m, keyRune('c'))
	m.commitInput.SetValue("wip")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if dlg := m.dialogs[dialogKey{taskKey: "p1:t1", verb: VerbCommit}]; dlg == nil || !dlg.loading {
		t.Fatalf("closing mid-request must keep the loading record")
	}

	m, after := runCmd(t, m, cmd)
	if after != nil {
		t.Fatalf("discarded result must not refresh or toast")
	}
	if m.toast != "" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	if _, ok := m.dialogs[dialogKey{taskKey: "p1:t1", verb: VerbCommit}]; ok {
		t.Fatalf("record should be cleared once the response lands")
	}
}

func TestStaleResultDoesNotBleedAcrossTasks(t *testing.T) {
	svc := &fakeService{
		refs: []api.TaskRef{
			taskRef("p1", "t1", "alpha", api.StatusLive),
			taskRef("p1", "t2", "beta", api.StatusLive),
		},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, _ = press(t, m, keyRune('c'))
	m.commitInput.SetValue("t1 work")
	m, pending := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// Move to the second task and open its commit dialog while the first
	// request is still in flight.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = press(t, m, keyRune('j'))
	m, _ = press(t, m, keyRune('c'))

	m, _ = runCmd(t, m, pending)

	dk, dlg, ok := m.openDialog()
	if !ok || dk.taskKey != "p1:t2" {
		t.Fatalf("expected t2 dialog still open, got %+v", dk)
	}
	if dlg.err != "" || dlg.loading {
		t.Fatalf("t1 result bled into t2 dialog: %+v", dlg)
	}
	if m.toast != "" {
		t.Fatalf("stale success must not toast, got %q", m.toast)
	}
}

func TestSyncToastsAndRefreshes(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, cmd := press(t, m, keyRune('s'))
	m, _ = runCmd(t, m, cmd)
	if m.toast != "Synced" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	found := false
	for _, call := range svc.calls {
		if call == "sync p1:t1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sync call, got %v", svc.calls)
	}
}

func TestMergeSingleCommitSkipsChooser(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		total:  1,
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, cmd := press(t, m, keyRune('m'))
	m, cmd = runCmd(t, m, cmd)
	if _, _, ok := m.openDialog(); ok {
		t.Fatalf("single commit merge must not open the method chooser")
	}

	m, _ = runCmd(t, m, cmd)
	found := false
	for _, call := range svc.calls {
		if call == "merge p1:t1 merge-commit" {
			found = true
		}
		if strings.HasPrefix(call, "merge ") && call != "merge p1:t1 merge-commit" {
			t.Fatalf("unexpected merge call %q", call)
		}
	}
	if !found {
		t.Fatalf("expected a direct merge-commit call, got %v", svc.calls)
	}
	if m.toast != "Merged" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
}

func TestMergeMultipleCommitsOpensChooserFirst(t *testing.T) {
	svc := &fakeService{
		refs:  []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		total: 2,
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, cmd := press(t, m, keyRune('m'))
	m, _ = runCmd(t, m, cmd)

	dk, dlg, ok := m.openDialog()
	if !ok || dk.verb != VerbMerge {
		t.Fatalf("expected merge chooser open")
	}
	if dlg.loading || dlg.err != "" || dlg.methodCursor != 0 {
		t.Fatalf("chooser must open clean: %+v", dlg)
	}
	for _, call := range svc.calls {
		if strings.HasPrefix(call, "merge ") {
			t.Fatalf("no merge call may happen before the chooser, got %v", svc.calls)
		}
	}
}

func TestMergeSquashScenario(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		total:  2,
		result: api.OpResult{Success: true, Message: "Merged"},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, cmd := press(t, m, keyRune('m'))
	m, _ = runCmd(t, m, cmd)

	// Squash is the first choice.
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, after := runCmd(t, m, cmd)

	found := false
	for _, call := range svc.calls {
		if call == "merge p1:t1 squash" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected squash merge call, got %v", svc.calls)
	}
	if _, _, ok := m.openDialog(); ok {
		t.Fatalf("expected chooser closed after success")
	}
	if m.toast != "Merged" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	if after == nil {
		t.Fatalf("success must schedule the refresh and cascade")
	}

	// The scheduled sequence refreshes, then enters the cascade.
	m, _ = press(t, m, tasksMsg(svc.refs))
	m, _ = press(t, m, cascadeEnterMsg{projectID: "p1", taskID: "t1", taskName: "alpha"})
	if !m.cascade.awaiting || m.cascade.taskID != "t1" {
		t.Fatalf("expected archive decision pending for t1, got %+v", m.cascade)
	}
}

func TestMergeChooserFailureStaysInline(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		total:  3,
		result: api.OpResult{Success: false, Message: "merge conflict on main"},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, cmd := press(t, m, keyRune('m'))
	m, _ = runCmd(t, m, cmd)
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = runCmd(t, m, cmd)

	_, dlg, ok := m.openDialog()
	if !ok || dlg.err != "merge conflict on main" {
		t.Fatalf("expected inline merge failure, got %+v", dlg)
	}
	if m.cascade.awaiting {
		t.Fatalf("failed merge must not enter the cascade")
	}
}

func TestMergeMethodToggle(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		total:  2,
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, cmd := press(t, m, keyRune('m'))
	m, _ = runCmd(t, m, cmd)
	m, _ = press(t, m, keyRune('j'))
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = runCmd(t, m, cmd)

	found := false
	for _, call := range svc.calls {
		if call == "merge p1:t1 merge-commit" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected merge-commit call, got %v", svc.calls)
	}
}

func TestCascadeArchiveNow(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusMerged)},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, cascadeEnterMsg{projectID: "p1", taskID: "t1", taskName: "alpha"})

	m, cmd := press(t, m, keyRune('a'))
	if m.cascade.awaiting {
		t.Fatalf("expected cascade resolved")
	}
	if m.selected != nil || m.mode != ModeList {
		t.Fatalf("cleanup must clear the selection and return to List")
	}

	m, _ = runCmd(t, m, cmd)
	if svc.calls[len(svc.calls)-1] != "archive p1:t1" {
		t.Fatalf("expected archive call, got %v", svc.calls)
	}
	if m.toast != "Archived" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
}

func TestCascadeKeep(t *testing.T) {
	svc := &fakeService{refs: []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusMerged)}}
	m := newTestModel(t, svc, &fakeHooks{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, cascadeEnterMsg{projectID: "p1", taskID: "t1", taskName: "alpha"})

	before := len(svc.calls)
	m, cmd := press(t, m, keyRune('k'))
	if cmd != nil {
		t.Fatalf("keep must not call the server")
	}
	if m.cascade.awaiting {
		t.Fatalf("expected cascade resolved")
	}
	if m.selected != nil || m.mode != ModeList {
		t.Fatalf("cleanup runs on keep as well")
	}
	if len(svc.calls) != before {
		t.Fatalf("unexpected calls %v", svc.calls[before:])
	}
}

func TestCascadeArchiveFailureKeepsCleanup(t *testing.T) {
	svc := &fakeService{
		refs: []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusMerged)},
		err:  errFake,
	}
	m := newTestModel(t, svc, &fakeHooks{})
	m, _ = press(t, m, cascadeEnterMsg{projectID: "p1", taskID: "t1", taskName: "alpha"})

	m, cmd := press(t, m, keyRune('a'))
	m, _ = runCmd(t, m, cmd)
	if m.toast != "Failed to archive" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	if m.mode != ModeList || m.selected != nil {
		t.Fatalf("cleanup must survive the archive failure")
	}
}

func TestRebaseBranchFetchFailureAborts(t *testing.T) {
	svc := &fakeService{
		refs:        []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		branchesErr: errFake,
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, cmd := press(t, m, keyRune('r'))
	m, _ = runCmd(t, m, cmd)
	if _, _, ok := m.openDialog(); ok {
		t.Fatalf("branch fetch failure must not open the picker")
	}
	if m.toast != "Failed to load branches" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
}

func TestRebasePickerFiltersOwnBranch(t *testing.T) {
	svc := &fakeService{
		refs: []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		branches: api.BranchList{Branches: []api.Branch{
			{Name: "main", IsCurrent: true},
			{Name: "task/t1"},
			{Name: "develop"},
		}},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, cmd := press(t, m, keyRune('r'))
	m, _ = runCmd(t, m, cmd)

	_, dlg, ok := m.openDialog()
	if !ok {
		t.Fatalf("expected branch picker open")
	}
	if len(dlg.branches) != 2 || dlg.branches[0] != "main" || dlg.branches[1] != "develop" {
		t.Fatalf("unexpected branches %v", dlg.branches)
	}
	if dlg.branchCursor != 0 {
		t.Fatalf("cursor should start on the current target, got %d", dlg.branchCursor)
	}
}

func TestRebaseSuccessPatchesTarget(t *testing.T) {
	svc := &fakeService{
		refs: []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		branches: api.BranchList{Branches: []api.Branch{
			{Name: "main", IsCurrent: true},
			{Name: "develop"},
		}},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, cmd := press(t, m, keyRune('r'))
	m, _ = runCmd(t, m, cmd)
	m, _ = press(t, m, keyRune('j'))
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = runCmd(t, m, cmd)

	found := false
	for _, call := range svc.calls {
		if call == "rebase p1:t1 develop" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected rebase call, got %v", svc.calls)
	}
	if m.refs[0].Task.Target != "develop" {
		t.Fatalf("expected optimistic target patch, got %q", m.refs[0].Task.Target)
	}
	if m.selected == nil || m.selected.Task.Target != "develop" {
		t.Fatalf("selected mirror must be patched too")
	}
}

func TestResetKeepsSelection(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = press(t, m, keyRune('u'))
	m, cmd := press(t, m, keyRune('y'))
	m, _ = runCmd(t, m, cmd)

	if m.selected == nil || m.selected.Key() != "p1:t1" {
		t.Fatalf("reset must stay on the current task")
	}
	if m.toast != "Reset" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
}

func TestCleanClearsSelection(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = press(t, m, keyRune('D'))
	m, cmd := press(t, m, keyRune('y'))
	m, _ = runCmd(t, m, cmd)

	if m.selected != nil || m.mode != ModeList {
		t.Fatalf("clean must clear the selection")
	}
	if svc.calls[len(svc.calls)-1] != "delete p1:t1" {
		t.Fatalf("expected delete call, got %v", svc.calls)
	}
}

func TestCleanClosedMidRequestDiscardsResult(t *testing.T) {
	svc := &fakeService{
		refs: []api.TaskRef{
			taskRef("p1", "t1", "alpha", api.StatusLive),
			taskRef("p1", "t2", "beta", api.StatusLive),
		},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = press(t, m, keyRune('D'))
	m, pending := press(t, m, keyRune('y'))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	// Move on to the second task while the request is in flight.
	m, _ = press(t, m, keyRune('j'))
	if m.selected == nil || m.selected.Key() != "p1:t2" {
		t.Fatalf("expected t2 selected before the stale result lands")
	}

	m, after := runCmd(t, m, pending)
	if after != nil {
		t.Fatalf("discarded clean result must not refresh or toast")
	}
	if m.selected == nil || m.selected.Key() != "p1:t2" || m.mode != ModeInfo {
		t.Fatalf("stale clean result must not disturb the new selection")
	}
	if m.toast != "" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	if _, ok := m.dialogs[dialogKey{taskKey: "p1:t1", verb: VerbClean}]; ok {
		t.Fatalf("record should be cleared once the response lands")
	}
}

func TestResetClosedMidRequestDiscardsResult(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = press(t, m, keyRune('u'))
	m, pending := press(t, m, keyRune('y'))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m, after := runCmd(t, m, pending)
	if after != nil {
		t.Fatalf("discarded reset result must not refresh or toast")
	}
	if m.toast != "" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	if _, ok := m.dialogs[dialogKey{taskKey: "p1:t1", verb: VerbReset}]; ok {
		t.Fatalf("record should be cleared once the response lands")
	}
}

func TestConfirmDialogDecline(t *testing.T) {
	svc := &fakeService{refs: []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)}}
	m := newTestModel(t, svc, &fakeHooks{})

	m, _ = press(t, m, keyRune('u'))
	m, cmd := press(t, m, keyRune('n'))
	if cmd != nil {
		t.Fatalf("declining must not call the server")
	}
	if _, _, ok := m.openDialog(); ok {
		t.Fatalf("expected dialog closed on decline")
	}
}

func TestVerbRefusedWhileInFlight(t *testing.T) {
	svc := &fakeService{
		refs:   []api.TaskRef{taskRef("p1", "t1", "alpha", api.StatusLive)},
		result: api.OpResult{Success: true},
	}
	m := newTestModel(t, svc, &fakeHooks{})

	m, first := press(t, m, keyRune('s'))
	if first == nil {
		t.Fatalf("expected first sync to run")
	}
	_, second := press(t, m, keyRune('s'))
	if second != nil {
		t.Fatalf("second sync must be refused while the first is in flight")
	}
}
