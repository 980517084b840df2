package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"

	"github.com/GarrickZ2/grove-sub001/internal/grove/api"
)

// View renders the controller.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	parts := []string{m.renderHeader()}
	if hooksLine := m.renderHooksLine(); hooksLine != "" {
		parts = append(parts, hooksLine)
	}
	if m.searchActive || m.searchText() != "" {
		parts = append(parts, LabelStyle.Render("Search: ")+m.searchInput.View())
	}

	switch m.mode {
	case ModeList:
		parts = append(parts, m.renderList())
	case ModeInfo:
		parts = append(parts, m.renderTwoPane(m.renderList(), m.renderInfo()))
	case ModeWorkspace:
		parts = append(parts, m.renderWorkspace())
	}

	if overlay := m.renderOverlay(); overlay != "" {
		parts = append(parts, overlay)
	}
	if m.toast != "" {
		parts = append(parts, ToastStyle.Render(m.toast))
	}
	if m.err != nil {
		parts = append(parts, ErrorStyle.Render("refresh failed: "+m.err.Error()))
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	title := TitleStyle.Render("🌿 grove")
	mode := LabelStyle.Render(m.mode.String())
	count := LabelStyle.Render(fmt.Sprintf("%d tasks", len(m.visible)))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", mode, "  ", count) + "\n"
}

// renderHooksLine summarizes the pending notifications across all tasks,
// leading with the most severe one.
func (m Model) renderHooksLine() string {
	if m.hookSrc == nil {
		return ""
	}
	entries := m.hookSrc.Entries()
	if len(entries) == 0 {
		return ""
	}
	top := entries[0]
	for _, e := range entries[1:] {
		if hookRank(e.Level) > hookRank(top.Level) {
			top = e
		}
	}
	line := fmt.Sprintf("%s %d notifications: %s", hookIndicator(string(top.Level)), len(entries), top.Message)
	return WarnStyle.Render(line) + HelpDescStyle.Render("  n to open")
}

func hookRank(level api.HookLevel) int {
	switch level {
	case api.HookCritical:
		return 2
	case api.HookWarn:
		return 1
	default:
		return 0
	}
}

func (m Model) renderList() string {
	if len(m.visible) == 0 {
		return LabelStyle.Render("  No tasks")
	}

	height := m.listHeight()
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := start + height
	if end > len(m.visible) {
		end = len(m.visible)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		ref := m.visible[i]
		marker := "  "
		if i == m.cursor {
			marker = SelectedStyle.Render("> ")
		}
		if m.grabbing && i == m.cursor {
			marker = WarnStyle.Render("≡ ")
		}
		hook := " "
		if m.hookSrc != nil {
			if entry, ok := m.hookSrc.Lookup(ref.Task.ID); ok && entry.ProjectID == ref.ProjectID {
				hook = hookIndicator(string(entry.Level))
			}
		}
		quick := ""
		if m.quickHint && i < 10 {
			quick = LabelStyle.Render(fmt.Sprintf("[%d] ", (i+1)%10))
		}
		name := ref.Task.Name
		if m.selected != nil && m.selected.Key() == ref.Key() {
			name = SelectedStyle.Render(name)
		}
		line := fmt.Sprintf("%s%s %s %s%s %s",
			marker,
			statusIndicator(string(ref.Task.Status)),
			hook,
			quick,
			name,
			LabelStyle.Render(ref.ProjectName+" → "+ref.Task.Target),
		)
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) listHeight() int {
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	return h
}

var infoTabs = []string{"Overview", "Commits", "Changes"}

func (m Model) renderInfo() string {
	ref, ok := m.selectedRef()
	if !ok {
		return LabelStyle.Render("No task selected")
	}

	tabs := make([]string, len(infoTabs))
	for i, name := range infoTabs {
		if i == m.infoTab {
			tabs[i] = SelectedStyle.Render(name)
		} else {
			tabs[i] = LabelStyle.Render(name)
		}
	}
	header := strings.Join(tabs, " │ ")

	var body string
	switch m.infoTab {
	case 0:
		body = m.renderOverview(ref)
	case 1:
		body = m.renderCommits(ref)
	case 2:
		body = m.renderChanges(ref)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

func (m Model) renderOverview(ref api.TaskRef) string {
	task := ref.Task
	lines := []string{
		SubtitleStyle.Render(task.Name),
		LabelStyle.Render("Project  ") + ref.ProjectName,
		LabelStyle.Render("Branch   ") + task.Branch,
		LabelStyle.Render("Target   ") + task.Target,
		LabelStyle.Render("Status   ") + statusIndicator(string(task.Status)) + " " + string(task.Status),
		LabelStyle.Render("By       ") + string(task.CreatedBy),
	}
	if !task.UpdatedAt.IsZero() {
		lines = append(lines, LabelStyle.Render("Updated  ")+task.UpdatedAt.Format(time.DateTime))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCommits(ref api.TaskRef) string {
	if len(ref.Task.Commits) == 0 {
		return LabelStyle.Render("No commits")
	}
	lines := make([]string, 0, len(ref.Task.Commits))
	for _, c := range ref.Task.Commits {
		hash := c.Hash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		lines = append(lines, LabelStyle.Render(hash)+" "+c.Message)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderChanges(ref api.TaskRef) string {
	task := ref.Task
	return fmt.Sprintf("%s files changed  %s  %s",
		SubtitleStyle.Render(fmt.Sprintf("%d", task.FilesChanged)),
		ToastStyle.Render(fmt.Sprintf("+%d", task.Additions)),
		ErrorStyle.Render(fmt.Sprintf("-%d", task.Deletions)),
	)
}

func (m Model) renderWorkspace() string {
	ref, ok := m.selectedRef()
	if !ok {
		return LabelStyle.Render("No task selected")
	}
	header := SubtitleStyle.Render("Workspace: " + ref.Task.Name)
	panes := m.layout.Panes()
	lines := make([]string, 0, len(panes)+2)
	lines = append(lines, header, "")
	for i, pane := range panes {
		label := string(pane.Pane)
		if pane.CustomCommand != "" {
			label += " (" + pane.CustomCommand + ")"
		}
		lines = append(lines, fmt.Sprintf("  pane %d: %s", i+1, label))
	}
	if m.workspacePanel {
		lines = append(lines, "", LabelStyle.Render("layout panel open, l to close"))
	}
	return strings.Join(lines, "\n")
}

// renderOverlay shows the top key-capturing layer, if any.
func (m Model) renderOverlay() string {
	if m.menu != nil {
		return m.renderMenu()
	}
	if dk, dlg, ok := m.openDialog(); ok {
		return m.renderDialog(dk, dlg)
	}
	if m.cascade.awaiting {
		return WarnStyle.Render(fmt.Sprintf("Merged %q. Archive it now? ", m.cascade.taskName)) +
			HelpKeyStyle.Render("a") + HelpDescStyle.Render(" archive • ") +
			HelpKeyStyle.Render("k") + HelpDescStyle.Render(" keep")
	}
	return ""
}

func (m Model) renderMenu() string {
	lines := make([]string, 0, len(m.menu.items)+1)
	lines = append(lines, SubtitleStyle.Render(m.menu.ref.Task.Name))
	for i, item := range m.menu.items {
		marker := "  "
		if i == m.menu.cursor {
			marker = SelectedStyle.Render("> ")
		}
		label := item.Label
		if item.Disabled {
			label = DisabledStyle.Render(label)
		}
		lines = append(lines, marker+label)
	}
	return PaneFocusedStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderDialog(dk dialogKey, dlg *dialogState) string {
	var body string
	switch dk.verb {
	case VerbCommit:
		body = LabelStyle.Render("Commit message") + "\n" + m.commitInput.View()
	case VerbMerge:
		methods := []string{"squash", "merge commit"}
		lines := []string{LabelStyle.Render("Merge method")}
		for i, name := range methods {
			marker := "  "
			if i == dlg.methodCursor {
				marker = SelectedStyle.Render("> ")
			}
			lines = append(lines, marker+name)
		}
		body = strings.Join(lines, "\n")
	case VerbRebase:
		lines := []string{LabelStyle.Render("New target branch")}
		for i, name := range dlg.branches {
			marker := "  "
			if i == dlg.branchCursor {
				marker = SelectedStyle.Render("> ")
			}
			lines = append(lines, marker+name)
		}
		body = strings.Join(lines, "\n")
	case VerbReset:
		body = WarnStyle.Render("Discard uncommitted changes? ") +
			HelpKeyStyle.Render("y") + HelpDescStyle.Render("/") + HelpKeyStyle.Render("n")
	case VerbClean:
		body = ErrorStyle.Render("Delete task and worktree? ") +
			HelpKeyStyle.Render("y") + HelpDescStyle.Render("/") + HelpKeyStyle.Render("n")
	}
	if dlg.loading {
		body += "\n" + LabelStyle.Render("Working...")
	}
	if dlg.err != "" {
		body += "\n" + ErrorStyle.Render(dlg.err)
	}
	return PaneFocusedStyle.Render(body)
}

func (m Model) renderHelp() string {
	rows := [][2]string{
		{"j/k", "next/prev task"},
		{"enter", "open task"},
		{"w", "workspace"},
		{"esc", "back"},
		{"alt+1..0", "quick select"},
		{"J/K", "move task"},
		{"g", "grab to reorder"},
		{"/", "search"},
		{"tab", "info panels"},
		{"c", "commit"},
		{"s", "sync"},
		{"m", "merge"},
		{"r", "retarget"},
		{"a", "archive"},
		{"u", "reset"},
		{"D", "clean"},
		{"x", "menu"},
		{"n", "notifications"},
		{"ctrl+r", "refresh"},
		{"q", "quit"},
	}
	lines := []string{TitleStyle.Render("Keyboard Shortcuts"), ""}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("  %s  %s",
			HelpKeyStyle.Render(padRight(row[0], 10)),
			HelpDescStyle.Render(row[1]),
		))
	}
	lines = append(lines, "", LabelStyle.Render("? or esc to close"))
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	help := HelpKeyStyle.Render("enter") + HelpDescStyle.Render(" open • ") +
		HelpKeyStyle.Render("w") + HelpDescStyle.Render(" workspace • ") +
		HelpKeyStyle.Render("x") + HelpDescStyle.Render(" menu • ") +
		HelpKeyStyle.Render("/") + HelpDescStyle.Render(" search • ") +
		HelpKeyStyle.Render("?") + HelpDescStyle.Render(" help • ") +
		HelpKeyStyle.Render("q") + HelpDescStyle.Render(" quit")

	lastUpdate := ""
	if !m.lastRefresh.IsZero() {
		lastUpdate = LabelStyle.Render(fmt.Sprintf("Updated %s ago", time.Since(m.lastRefresh).Round(time.Second)))
	}

	padding := m.width - lipgloss.Width(help) - lipgloss.Width(lastUpdate) - 2
	if padding < 1 {
		padding = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, help, strings.Repeat(" ", padding), lastUpdate)
}

func (m Model) renderTwoPane(left, right string) string {
	leftW := m.width / 3
	if leftW < 24 {
		leftW = 24
	}
	if leftW >= m.width {
		return right
	}
	leftLines := strings.Split(left, "\n")
	for i, line := range leftLines {
		leftLines[i] = padRight(line, leftW)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(leftLines, "\n"), " │ ", right)
}

// padRight pads a line to width display columns, ignoring ANSI sequences.
func padRight(line string, width int) string {
	w := ansi.PrintableRuneWidth(line)
	if w >= width {
		return line
	}
	return line + strings.Repeat(" ", width-w)
}
