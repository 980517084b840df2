// Package tui implements the grove task workspace controller.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/GarrickZ2/grove-sub001/internal/grove/api"
	"github.com/GarrickZ2/grove-sub001/internal/grove/layout"
	"github.com/GarrickZ2/grove-sub001/internal/grove/ordering"
)

// ViewMode is how much detail is shown for the selected task.
type ViewMode int

const (
	ModeList ViewMode = iota
	ModeInfo
	ModeWorkspace
)

func (v ViewMode) String() string {
	switch v {
	case ModeList:
		return "List"
	case ModeInfo:
		return "Info"
	case ModeWorkspace:
		return "Workspace"
	default:
		return "Unknown"
	}
}

const infoTabCount = 3 // overview, commits, changes

// Messages
type tasksMsg []api.TaskRef
type refreshErrMsg struct{ err error }
type tickMsg time.Time
type toastClearMsg struct{ seq int }

// Model is the task workspace controller.
type Model struct {
	svc      TaskService
	hookSrc  HookSource
	order    *ordering.Store
	layout   *layout.Tree
	navigate Navigate

	refs    []api.TaskRef
	visible []api.TaskRef
	cursor  int

	selected *api.TaskRef
	mode     ViewMode
	infoTab  int

	searchActive bool
	searchInput  textinput.Model

	grabbing bool

	menu *menuState

	dialogs     map[dialogKey]*dialogState
	commitInput textinput.Model

	cascade cascadeState

	workspacePanel bool

	toast    string
	toastSeq int

	quickHint bool
	showHelp  bool

	width        int
	height       int
	err          error
	lastRefresh  time.Time
	refreshEvery time.Duration
	quitting     bool
}

// New creates the controller over the given service boundaries.
func New(svc TaskService, hookSrc HookSource, order *ordering.Store, lt *layout.Tree) Model {
	searchInput := textinput.New()
	searchInput.Placeholder = "search tasks"
	searchInput.Prompt = "/ "
	searchInput.CharLimit = 128

	commitInput := textinput.New()
	commitInput.Placeholder = "commit message"
	commitInput.CharLimit = 200
	commitInput.Width = 50

	if lt == nil {
		lt = layout.NewTree(layout.PaneAgent)
	}

	return Model{
		svc:          svc,
		hookSrc:      hookSrc,
		order:        order,
		layout:       lt,
		mode:         ModeList,
		searchInput:  searchInput,
		commitInput:  commitInput,
		dialogs:      map[dialogKey]*dialogState{},
		refreshEvery: 5 * time.Second,
	}
}

// WithNavigate sets the upward navigation callback for the hosting shell.
func (m Model) WithNavigate(nav Navigate) Model {
	m.navigate = nav
	return m
}

// WithRefreshInterval overrides the auto-refresh cadence.
func (m Model) WithRefreshInterval(d time.Duration) Model {
	if d > 0 {
		m.refreshEvery = d
	}
	return m
}

// Init starts the initial refresh and the auto-refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick())
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		refs, err := m.svc.ListAllTasks()
		if err != nil {
			return refreshErrMsg{err: err}
		}
		return tasksMsg(refs)
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) showToast(message string) tea.Cmd {
	m.toast = message
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return toastClearMsg{seq: seq}
	})
}

// selectedRef returns the active task reference, refreshed against the last
// fetch when possible.
func (m Model) selectedRef() (api.TaskRef, bool) {
	if m.selected == nil {
		return api.TaskRef{}, false
	}
	return *m.selected, true
}

func (m Model) cursorRef() (api.TaskRef, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return api.TaskRef{}, false
	}
	return m.visible[m.cursor], true
}

// selectRef makes ref the active selection. Navigating to a task with a
// pending notification dismisses it as part of the navigation. Selecting the
// task that is already active is a no-op beyond the List->Info transition.
func (m *Model) selectRef(ref api.TaskRef) {
	if m.hookSrc != nil {
		if entry, ok := m.hookSrc.Lookup(ref.Task.ID); ok && entry.ProjectID == ref.ProjectID {
			m.hookSrc.Dismiss(entry.ProjectID, entry.TaskID)
		}
	}
	if m.mode == ModeList {
		m.mode = ModeInfo
		m.infoTab = 0
	}
	if m.selected != nil && m.selected.Key() == ref.Key() {
		return
	}
	r := ref
	m.selected = &r
	if m.navigate != nil {
		m.navigate("task", map[string]string{"project": ref.ProjectID, "task": ref.Task.ID})
	}
}

// openWorkspace transitions to Workspace for ref. Archived tasks have no
// workspace.
func (m *Model) openWorkspace(ref api.TaskRef) {
	if ref.Task.Status == api.StatusArchived {
		return
	}
	m.selectRef(ref)
	m.mode = ModeWorkspace
	m.workspacePanel = false
}

// closeView steps back one level: Workspace -> Info -> List.
func (m *Model) closeView() {
	switch m.mode {
	case ModeWorkspace:
		if m.workspacePanel {
			m.workspacePanel = false
			return
		}
		m.mode = ModeInfo
	case ModeInfo:
		m.mode = ModeList
		m.selected = nil
	}
}

func (m *Model) clearSelection() {
	m.selected = nil
	m.mode = ModeList
	m.workspacePanel = false
}

func (m Model) searchText() string {
	return strings.TrimSpace(m.searchInput.Value())
}

// rebuildVisible orders the fetched refs by the display order and applies the
// search filter on top, preserving that order.
func (m *Model) rebuildVisible() {
	ordered := ordering.SortRefs(m.refs, api.TaskRef.Key, m.order.Keys())
	pattern := m.searchText()
	if pattern == "" {
		m.visible = ordered
	} else {
		targets := make([]string, len(ordered))
		for i, ref := range ordered {
			targets[i] = ref.Task.Name + " " + ref.Task.Branch + " " + ref.ProjectName
		}
		matched := map[int]bool{}
		for _, match := range fuzzy.Find(pattern, targets) {
			matched[match.Index] = true
		}
		filtered := make([]api.TaskRef, 0, len(matched))
		for i, ref := range ordered {
			if matched[i] {
				filtered = append(filtered, ref)
			}
		}
		m.visible = filtered
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// nextTask and prevTask wrap around the ordered visible collection. Outside
// List mode they also move the active selection.
func (m *Model) nextTask() {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = (m.cursor + 1) % len(m.visible)
	m.followCursor()
}

func (m *Model) prevTask() {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = (m.cursor - 1 + len(m.visible)) % len(m.visible)
	m.followCursor()
}

func (m *Model) followCursor() {
	if m.mode == ModeList {
		return
	}
	if ref, ok := m.cursorRef(); ok {
		m.selectRef(ref)
	}
}

// jumpToHook moves to the first visible task carrying a pending notification
// and selects it, which dismisses the entry as part of the navigation.
func (m *Model) jumpToHook() {
	if m.hookSrc == nil {
		return
	}
	for i, ref := range m.visible {
		if entry, ok := m.hookSrc.Lookup(ref.Task.ID); ok && entry.ProjectID == ref.ProjectID {
			m.cursor = i
			m.selectRef(ref)
			return
		}
	}
}

// quickSelect jumps straight to the nth visible task (0-based).
func (m *Model) quickSelect(n int) {
	if n < 0 || n >= len(m.visible) {
		return
	}
	m.cursor = n
	m.selectRef(m.visible[n])
}

// applyFetch folds a fresh fetch into the model: reconcile ordering, rebuild
// the visible collection, and refresh the selected task's mirror.
func (m *Model) applyFetch(refs []api.TaskRef) {
	m.refs = refs
	fetchKeys := make([]string, len(refs))
	for i, ref := range refs {
		fetchKeys[i] = ref.Key()
	}
	m.order.Reconcile(fetchKeys)
	m.rebuildVisible()

	if m.selected != nil {
		for _, ref := range refs {
			if ref.Key() == m.selected.Key() {
				r := ref
				m.selected = &r
				break
			}
		}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tasksMsg:
		m.err = nil
		m.lastRefresh = time.Now()
		m.applyFetch([]api.TaskRef(msg))
		return m, nil

	case refreshErrMsg:
		m.err = msg.err
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), m.tick())

	case toastClearMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case commitsCountMsg:
		return m.handleCommitsCount(msg)

	case branchesMsg:
		return m.handleBranches(msg)

	case opResultMsg:
		return m.handleOpResult(msg)

	case cascadeEnterMsg:
		m.cascade.enter(msg.projectID, msg.taskID, msg.taskName)
		return m, nil
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// The transient quick-select hint stays up only while alt chords are
	// being used.
	if !strings.HasPrefix(msg.String(), "alt+") {
		m.quickHint = false
	}

	if m.showHelp {
		if key.Matches(msg, keys.Help) || key.Matches(msg, keys.Close) {
			m.showHelp = false
		}
		return m, nil
	}

	// Key-capturing layers, highest priority first. While one is open the
	// global bindings are inert.
	if m.menu != nil {
		return m.updateMenuKey(msg)
	}
	if dk, dlg, ok := m.openDialog(); ok {
		return m.updateDialogKey(msg, dk, dlg)
	}
	if m.cascade.awaiting {
		return m.updateCascadeKey(msg)
	}
	if m.searchActive {
		return m.updateSearchKey(msg)
	}
	if m.grabbing {
		return m.updateGrabKey(msg)
	}

	for i, binding := range keys.Quick {
		if key.Matches(msg, binding) {
			m.quickHint = true
			m.quickSelect(i)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, keys.Search):
		m.searchActive = true
		m.searchInput.Focus()
		return m, nil

	case key.Matches(msg, keys.Close):
		m.closeView()
		return m, nil

	case key.Matches(msg, keys.Next):
		m.nextTask()
		return m, nil

	case key.Matches(msg, keys.Prev):
		m.prevTask()
		return m, nil

	case key.Matches(msg, keys.Select):
		if ref, ok := m.cursorRef(); ok {
			m.selectRef(ref)
		}
		return m, nil

	case key.Matches(msg, keys.Workspace):
		if ref, ok := m.currentRef(); ok {
			m.openWorkspace(ref)
		}
		return m, nil

	case key.Matches(msg, keys.MoveUp):
		if m.searchText() == "" {
			m.order.Swap(m.cursor, ordering.Up)
			if m.cursor > 0 {
				m.cursor--
			}
			m.rebuildVisible()
		}
		return m, nil

	case key.Matches(msg, keys.MoveDown):
		if m.searchText() == "" {
			m.order.Swap(m.cursor, ordering.Down)
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
			m.rebuildVisible()
		}
		return m, nil

	case key.Matches(msg, keys.Grab):
		// Grab-reorder only applies to the unfiltered collection; with a
		// filter active the indices would not line up with the order store.
		if m.mode == ModeList && m.searchText() == "" && len(m.visible) > 0 {
			m.grabbing = true
			m.order.BeginDrag(m.cursor)
		}
		return m, nil

	case key.Matches(msg, keys.Menu):
		if ref, ok := m.currentRef(); ok {
			m.selectRef(ref)
			m.openMenu(ref)
		}
		return m, nil

	case key.Matches(msg, keys.Hooks):
		m.jumpToHook()
		return m, nil

	case key.Matches(msg, keys.InfoTab):
		if m.mode == ModeInfo {
			m.infoTab = (m.infoTab + 1) % infoTabCount
		}
		return m, nil

	case key.Matches(msg, keys.InfoBack):
		if m.mode == ModeInfo {
			m.infoTab = (m.infoTab + infoTabCount - 1) % infoTabCount
		}
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m, m.refresh()

	case key.Matches(msg, keys.Commit):
		if ref, ok := m.currentRef(); ok {
			return m.openCommitDialog(ref)
		}
		return m, nil

	case key.Matches(msg, keys.Sync):
		if ref, ok := m.currentRef(); ok {
			return m.startSync(ref)
		}
		return m, nil

	case key.Matches(msg, keys.Merge):
		if ref, ok := m.currentRef(); ok {
			return m.startMerge(ref)
		}
		return m, nil

	case key.Matches(msg, keys.Rebase):
		if ref, ok := m.currentRef(); ok {
			return m.startRebase(ref)
		}
		return m, nil

	case key.Matches(msg, keys.Archive):
		if ref, ok := m.currentRef(); ok {
			return m.startArchive(ref)
		}
		return m, nil

	case key.Matches(msg, keys.Reset):
		if ref, ok := m.currentRef(); ok {
			return m.openResetDialog(ref)
		}
		return m, nil

	case key.Matches(msg, keys.Clean):
		if ref, ok := m.currentRef(); ok {
			return m.openCleanDialog(ref)
		}
		return m, nil
	}

	if m.mode == ModeWorkspace && msg.String() == "l" {
		m.workspacePanel = !m.workspacePanel
		return m, nil
	}

	return m, nil
}

// currentRef is the task a verb applies to: the active selection, or the
// cursor row in List mode.
func (m Model) currentRef() (api.TaskRef, bool) {
	if ref, ok := m.selectedRef(); ok {
		return ref, true
	}
	if m.mode == ModeList {
		return m.cursorRef()
	}
	return api.TaskRef{}, false
}

func (m Model) updateSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.searchActive = false
		m.rebuildVisible()
		return m, nil
	case tea.KeyEnter:
		m.searchInput.Blur()
		m.searchActive = false
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.rebuildVisible()
	return m, cmd
}

func (m Model) updateGrabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Next):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			m.order.DragOver(m.cursor)
		}
		return m, nil
	case key.Matches(msg, keys.Prev):
		if m.cursor > 0 {
			m.cursor--
			m.order.DragOver(m.cursor)
		}
		return m, nil
	case key.Matches(msg, keys.Select):
		m.order.Drop()
		m.grabbing = false
		m.rebuildVisible()
		return m, nil
	case key.Matches(msg, keys.Close):
		m.order.CancelDrag()
		m.grabbing = false
		m.rebuildVisible()
		return m, nil
	}
	return m, nil
}
