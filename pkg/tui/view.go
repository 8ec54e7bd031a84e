package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stefanpenner/taskbuddy/pkg/config"
	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

const minWidth = 60
const minHeight = 16

// View implements tea.Model.
func (m Model) View() string {
	w := m.width
	h := m.height
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}

	if m.alertMsg != "" {
		return placeOverlay(m.renderAlertModal(), w, h)
	}

	if m.screen == screenLogin {
		return placeOverlay(m.renderLogin(), w, h)
	}

	if m.form.kind != formNone {
		return placeOverlay(m.renderFormModal(), w, h)
	}

	if m.showHelpModal {
		return placeOverlay(m.renderHelpModal(), w, h)
	}

	if m.showDeleteConfirm {
		return placeOverlay(m.renderDeleteModal(), w, h)
	}

	var b strings.Builder

	b.WriteString(m.renderHeader(w))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")

	headerLines := 3
	footerLines := 2
	contentHeight := h - headerLines - footerLines

	switch m.screen {
	case screenCalendar:
		b.WriteString(m.renderCalendar(w, contentHeight))
		b.WriteString("\n")
	case screenNotifications:
		b.WriteString(padBlock(m.renderNotifications(w, contentHeight), w, contentHeight))
	case screenProfile:
		b.WriteString(padBlock(m.renderProfile(), w, contentHeight))
	case screenSettings:
		b.WriteString(padBlock(m.renderSettings(), w, contentHeight))
	default:
		b.WriteString(m.renderTaskScreen(w, contentHeight))
	}

	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render(m.keys.ShortHelp(m.screen)))

	return b.String()
}

func (m Model) renderHeader(width int) string {
	title := HeaderStyle.Render("TaskBuddy")

	summary := tasks.Summarize(m.modeTasks())
	statsText := fmt.Sprintf("%d/%d done (%.0f%%)", summary.Completed, summary.Total, summary.Rate())
	if m.user != nil {
		statsText = m.user.Username + "  " + statsText
	}
	stats := HeaderCountStyle.Render(statsText)

	status := m.renderStatus()
	if status != "" {
		status = "  " + status
	}

	gap := width - lipgloss.Width(title) - lipgloss.Width(stats) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	return title + status + strings.Repeat(" ", gap) + stats
}

func (m Model) renderStatus() string {
	if m.statusMsg == "" || !time.Now().Before(m.statusTimeout) {
		return ""
	}
	if m.statusIsError {
		return StatusErrorStyle.Render(m.statusMsg)
	}
	return StatusInfoStyle.Render(m.statusMsg)
}

func (m Model) renderTabs() string {
	names := []struct {
		s    screen
		name string
	}{
		{screenTasks, "1 Tasks"},
		{screenCalendar, "2 Calendar"},
		{screenNotifications, "3 Notifications"},
		{screenProfile, "4 Profile"},
		{screenSettings, "5 Settings"},
	}

	var tabs []string
	for _, n := range names {
		name := n.name
		if n.s == screenNotifications && m.unreadCount > 0 && m.notificationsEnabled() {
			name += fmt.Sprintf(" (%d)", m.unreadCount)
		}
		if n.s == m.screen {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(name))
		}
	}

	if m.screen == screenTasks {
		tabs = append(tabs, FooterStyle.Render("   Mode: "))
		for _, mode := range []tasks.Mode{tasks.ModePersonal, tasks.ModeStudy} {
			if mode == m.mode {
				tabs = append(tabs, ActiveTabStyle.Render(mode.Label()))
			} else {
				tabs = append(tabs, InactiveTabStyle.Render(mode.Label()))
			}
		}
	}
	return strings.Join(tabs, "")
}

// detailWidth returns the usable width of the task detail pane.
func detailWidth(total int) int {
	w := total - listWidth(total) - 1 - 2
	if w < 20 {
		w = 20
	}
	return w
}

func listWidth(total int) int {
	w := total * 2 / 5
	if w < 30 {
		w = 30
	}
	return w
}

func (m Model) renderTaskScreen(w, contentHeight int) string {
	leftWidth := listWidth(w)
	rightWidth := w - leftWidth - 1
	if rightWidth < 20 {
		rightWidth = 20
	}

	leftPanel := m.renderListPanel(leftWidth, contentHeight)
	rightPanel := m.renderDetailPanel(rightWidth, contentHeight)

	sepColor := ColorGrayDim
	if m.focusedPane == 1 {
		sepColor = ColorAccent
	}
	sep := lipgloss.NewStyle().Foreground(sepColor).Render("│")

	var b strings.Builder
	for i := 0; i < contentHeight; i++ {
		b.WriteString(getLine(leftPanel, i, leftWidth))
		b.WriteString(sep)
		b.WriteString(getLine(rightPanel, i, rightWidth))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderListPanel(width, height int) string {
	var lines []string

	// Reserve last line for category counts
	listHeight := height - 1
	if listHeight < 1 {
		listHeight = 1
	}

	if len(m.visibleItems) == 0 {
		lines = append(lines, FooterStyle.Render("No tasks yet. Press 'a' to add one."))
	}

	// Scrolling window
	startIdx := 0
	endIdx := len(m.visibleItems)
	if len(m.visibleItems) > listHeight {
		half := listHeight / 2
		startIdx = m.cursor - half
		if startIdx < 0 {
			startIdx = 0
		}
		endIdx = startIdx + listHeight
		if endIdx > len(m.visibleItems) {
			endIdx = len(m.visibleItems)
			startIdx = endIdx - listHeight
			if startIdx < 0 {
				startIdx = 0
			}
		}
	}

	for i := startIdx; i < endIdx; i++ {
		item := m.visibleItems[i]
		if item.IsSectionHeader {
			lines = append(lines, renderSectionHeader(item, width))
			continue
		}
		lines = append(lines, m.renderTaskRow(item.Task, i == m.cursor, width, true))
	}

	for len(lines) < listHeight {
		lines = append(lines, "")
	}
	lines = append(lines, m.renderCategoryCounts())

	return strings.Join(lines, "\n")
}

func (m Model) renderCategoryCounts() string {
	summary := tasks.Summarize(m.modeTasks())
	var parts []string
	for _, c := range tasks.Categories {
		if n := summary.ByCategory[c]; n > 0 {
			parts = append(parts, categoryBadge(c)+FooterStyle.Render(" "+strconv.Itoa(n)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, FooterStyle.Render(" · "))
}

func renderSectionHeader(item TaskItem, width int) string {
	label := priorityStyle(item.Priority).Bold(true).Render("── " + item.Name + " ")
	labelWidth := lipgloss.Width(label)
	remaining := width - labelWidth
	if remaining > 0 {
		label += lipgloss.NewStyle().Foreground(ColorGrayDim).Render(strings.Repeat("─", remaining))
	}
	return label
}

// renderTaskRow renders one task line: status icon, title, category and due
// date.
func (m Model) renderTaskRow(t tasks.Task, isSelected bool, width int, showDue bool) string {
	var statusIcon, title string
	if t.Completed {
		statusIcon = CompleteStyle.Render(IconComplete)
		title = CompletedTitleStyle.Render(t.Title)
	} else {
		statusIcon = IncompleteStyle.Render(IconIncomplete)
		title = t.Title
	}

	line := RowIndent + statusIcon + " " + priorityStyle(t.Priority).Render(IconMark) + " " + title
	suffix := " " + categoryBadge(t.Category)
	if showDue && t.DueDate != "" {
		style := DueStyle
		if !t.Completed && t.DueDate < tasks.FormatDate(m.today()) {
			style = OverdueStyle
		}
		suffix += " " + style.Render(t.DueDate)
	}

	// Right-align the suffix when there is room
	gap := width - lipgloss.Width(line) - lipgloss.Width(suffix)
	if gap >= 1 {
		line += strings.Repeat(" ", gap) + suffix
	} else if lipgloss.Width(line) < width {
		line += strings.Repeat(" ", width-lipgloss.Width(line))
	}

	if isSelected {
		line = SelectedStyle.Render(line)
	}
	return line
}

func (m Model) renderDetailPanel(width, height int) string {
	t, ok := m.selectedTask()
	if !ok {
		return FooterStyle.Render(" Select a task to view details")
	}

	md := renderTaskMarkdown(t)

	// Render with glamour (cached renderer)
	rendered := md
	if m.glamourRenderer != nil {
		if out, err := m.glamourRenderer.Render(md); err == nil {
			rendered = out
		}
	}

	rendered = strings.TrimRight(rendered, "\n ")
	lines := strings.Split(rendered, "\n")

	scroll := m.detailScroll
	if scroll > len(lines)-1 {
		scroll = len(lines) - 1
	}
	if scroll < 0 {
		scroll = 0
	}
	lines = lines[scroll:]

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// renderTaskMarkdown builds the markdown for the detail pane.
func renderTaskMarkdown(t tasks.Task) string {
	var md strings.Builder

	md.WriteString("# " + t.Title + "\n\n")

	status := "Active"
	if t.Completed {
		status = "Completed"
	}
	meta := []string{
		"**Priority:** " + t.Priority.Label(),
		"**Category:** " + t.Category.Label(),
		"**Mode:** " + t.Mode.Label(),
		"**Status:** " + status,
	}
	md.WriteString(strings.Join(meta, " | ") + "\n\n")

	if t.DueDate != "" {
		md.WriteString("**Due:** " + t.DueDate + "\n\n")
	}
	if t.Description != "" {
		md.WriteString(t.Description)
		if !strings.HasSuffix(t.Description, "\n") {
			md.WriteString("\n")
		}
	}
	return md.String()
}

func (m Model) renderNotifications(width, height int) string {
	list := m.sortedNotifications()
	if len(list) == 0 {
		return FooterStyle.Render(" No notifications")
	}

	var lines []string
	for i, n := range list {
		icon := IconRead
		style := ReadStyle
		if !n.IsRead {
			icon = CalendarMarkStyle.Render(IconUnread)
			style = UnreadStyle
		}

		head := " " + icon + " " + notificationIcon(n.Type) + " " + style.Render(n.Title)
		when := FooterStyle.Render(formatTimestamp(n.CreatedAt))
		gap := width - lipgloss.Width(head) - lipgloss.Width(when) - 1
		if gap >= 1 {
			head += strings.Repeat(" ", gap) + when
		}
		if lipgloss.Width(head) < width {
			head += strings.Repeat(" ", width-lipgloss.Width(head))
		}
		if i == m.notifCursor {
			head = SelectedStyle.Render(head)
		}
		lines = append(lines, head)
		if n.Message != "" {
			lines = append(lines, "      "+FooterStyle.Render(n.Message))
		}
	}

	// Keep the cursor row visible
	if len(lines) > height {
		row := 0
		for i := 0; i < m.notifCursor && i < len(list); i++ {
			row++
			if list[i].Message != "" {
				row++
			}
		}
		start := row - height/2
		if start < 0 {
			start = 0
		}
		if start > len(lines)-height {
			start = len(lines) - height
		}
		lines = lines[start : start+height]
	}
	return strings.Join(lines, "\n")
}

// formatTimestamp shortens a remote timestamp to date and minute.
func formatTimestamp(ts string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2006-01-02 15:04")
		}
	}
	return ts
}

func (m Model) renderProfile() string {
	var b strings.Builder
	label := ModalLabelStyle.Width(14)

	row := func(name, value string) {
		b.WriteString(" " + label.Render(name) + ModalValueStyle.Render(value) + "\n")
	}

	if m.profile == nil {
		if m.user == nil {
			return FooterStyle.Render(" Loading profile…")
		}
		b.WriteString(" " + HeaderStyle.Render(m.user.Username) + "\n\n")
		row("Email", m.user.Email)
		return b.String()
	}

	// Kept to nine rows so it fits the smallest terminal.
	p := m.profile
	b.WriteString(" " + HeaderStyle.Render(p.Username) + "\n\n")
	row("Email", p.Email)
	row("Member since", formatTimestamp(p.CreatedAt))
	bio := "-"
	if p.Bio != nil && *p.Bio != "" {
		bio = *p.Bio
	}
	row("Bio", bio)
	avatar := "-"
	if p.AvatarURL != nil && *p.AvatarURL != "" {
		avatar = *p.AvatarURL
	}
	row("Avatar", avatar)

	if p.Stats != nil {
		row("Goals", fmt.Sprintf("%d total, %d completed (%.0f%%)",
			p.Stats.TotalGoals, p.Stats.CompletedGoals, p.Stats.CompletionRate()))
	}

	if p.TelegramChatID != nil {
		row("Telegram", CompleteStyle.Render("linked")+FooterStyle.Render(fmt.Sprintf(" (chat %d)", *p.TelegramChatID)))
	} else {
		row("Telegram", "not linked, open to connect:")
		if m.cfg != nil {
			row("", m.cfg.TelegramLink(p.ID))
		}
	}
	return b.String()
}

func (m Model) renderSettings() string {
	if m.cfg == nil {
		return FooterStyle.Render(" No configuration loaded")
	}
	var b strings.Builder
	label := ModalLabelStyle.Width(16)
	row := func(name, value string) {
		b.WriteString(" " + label.Render(name) + ModalValueStyle.Render(value) + "\n")
	}
	toggle := func(v bool) string {
		if v {
			return CompleteStyle.Render("on")
		}
		return FooterStyle.Render("off")
	}

	s := m.cfg.Settings
	b.WriteString(" " + HeaderStyle.Render("Settings") + "\n\n")
	row("Notifications", toggle(s.Notifications))
	row("Telegram", toggle(s.TelegramNotifications))
	user := s.TelegramUsername
	if user == "" {
		user = "-"
	}
	row("Telegram user", user)
	row("Email", toggle(s.EmailNotifications))
	row("Remind me", config.ReminderLabel(s.ReminderLead))
	row("Theme", s.Theme)
	row("Accent", lipgloss.NewStyle().Foreground(ColorAccent).Render(s.Accent))
	if m.cfg.Path != "" {
		row("Saved in", FooterStyle.Render(m.cfg.Path))
	}
	return b.String()
}

func (m Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("TaskBuddy"))
	b.WriteString("  ")
	b.WriteString(ModalTitleStyle.Render(m.form.title))
	b.WriteString("\n\n")
	b.WriteString(m.form.view())
	b.WriteString("\n")

	toggle := "ctrl+r create an account"
	if m.form.kind == formRegister {
		toggle = "ctrl+r back to log in"
	}
	hint := "tab next field  enter submit  " + toggle + "  esc quit"
	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString(FooterStyle.Render(hint))

	return ModalStyle.Width(lipgloss.Width(hint) + 6).Render(b.String())
}

func (m Model) renderHelpModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().Foreground(ColorBlue).Width(16)
	descStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	for _, binding := range m.keys.FullHelp() {
		b.WriteString(keyStyle.Render(binding[0]))
		b.WriteString(descStyle.Render(binding[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("Press Esc or ? to close"))

	return ModalStyle.Render(b.String())
}

func (m Model) renderDeleteModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Delete Task"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete '%s'?\n\n", m.deleteTarget.Title))
	b.WriteString(lipgloss.NewStyle().Foreground(ColorGreen).Render("[y]") + " Yes  ")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorRed).Render("[n]") + " No")

	return ModalStyle.Render(b.String())
}

func (m Model) renderAlertModal() string {
	var b strings.Builder
	b.WriteString(StatusErrorStyle.Render(m.alertMsg))
	b.WriteString("\n\n")
	b.WriteString(FooterStyle.Render("Press Enter to continue"))
	return AlertModalStyle.Render(b.String())
}

// Helper functions

func getLine(block string, idx int, width int) string {
	lines := strings.Split(block, "\n")
	if idx < len(lines) {
		line := lines[idx]
		lineWidth := lipgloss.Width(line)
		if lineWidth < width {
			return line + strings.Repeat(" ", width-lineWidth)
		}
		return line
	}
	return strings.Repeat(" ", width)
}

// padBlock pads block to exactly height lines of width columns, each
// terminated by a newline.
func padBlock(block string, width, height int) string {
	var b strings.Builder
	for i := 0; i < height; i++ {
		b.WriteString(getLine(block, i, width))
		b.WriteString("\n")
	}
	return b.String()
}

func placeOverlay(modal string, width, height int) string {
	modalLines := strings.Split(modal, "\n")

	topPadding := (height - len(modalLines)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	leftPadding := (width - lipgloss.Width(modalLines[0])) / 2
	if leftPadding < 0 {
		leftPadding = 0
	}

	var result strings.Builder
	for i := 0; i < topPadding; i++ {
		result.WriteString("\n")
	}

	for _, line := range modalLines {
		result.WriteString(strings.Repeat(" ", leftPadding))
		result.WriteString(line)
		result.WriteString("\n")
	}

	return result.String()
}
