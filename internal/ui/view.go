package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderMain renders the full screen: header, clock panel, notices, recent
// log lines and the key hints.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	body := lipgloss.JoinVertical(lipgloss.Center,
		m.renderClock(),
		m.renderNotice(),
	)

	logs := m.renderLogs()

	used := lipgloss.Height(header) + lipgloss.Height(footer) + lipgloss.Height(logs)
	bodyHeight := m.height - used
	if bodyHeight < lipgloss.Height(body) {
		bodyHeight = lipgloss.Height(body)
	}

	bgColor := lipgloss.Color(m.theme.Background)
	centered := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceBackground(bgColor))

	return lipgloss.JoinVertical(lipgloss.Left, header, centered, logs, footer)
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("tally", styles.Logo)}
	if m.session != "" {
		parts = append(parts, bg.Render(m.session, styles.MutedText))
	}

	snap := m.snapshot
	switch {
	case !snap.HasHistory && snap.LastError == nil:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	default:
		status := m.status()
		parts = append(parts, styles.StatusStyle(status).Render(strings.ToUpper(status)))
	}

	if snap.LastError != nil {
		parts = append(parts, bg.Render("API "+classifyConnectionError(snap.LastError), styles.DangerText))
		if snap.IsOffline() {
			parts = append(parts, bg.Render("Retrying...", styles.WarningText))
		}
	}

	pendingStyle := styles.Text
	if snap.Pending > 0 {
		pendingStyle = styles.WarningText.Bold(true)
	}
	parts = append(parts,
		bg.Render("Pending:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", snap.Pending), pendingStyle))

	if snap.Delivery.IsOffline() {
		parts = append(parts, bg.Render("OFFLINE", styles.DangerText))
	}

	if !snap.LastUpdated.IsZero() {
		parts = append(parts, bg.Render(snap.LastUpdated.Format("15:04:05"), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

// renderClock renders the elapsed and paused totals, recomputed from the
// event history at the current tick.
func (m Model) renderClock() string {
	styles := m.theme.Styles()
	panelStyles := styles.WithBackground(m.theme.SurfaceAlt)

	st := m.snapshot.StateAt(m.now)

	lines := []string{
		panelStyles.Clock.Render(formatClock(st.Elapsed)),
		"",
		panelStyles.MutedText.Render("paused ") + panelStyles.Text.Render(formatClock(st.Paused)),
		panelStyles.MutedText.Render("total  ") + panelStyles.Text.Render(formatClock(st.Total())),
	}
	if last, ok := m.snapshot.LastEvent(); ok {
		lines = append(lines, panelStyles.FaintText.Render(
			fmt.Sprintf("last %s at %s", last.Kind, last.Time.Local().Format("15:04:05"))))
	}

	return styles.Panel.
		BorderForeground(lipgloss.Color(m.borderColor())).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (m Model) borderColor() string {
	if m.status() == statusRunning {
		return m.theme.BorderFocus
	}
	return m.theme.Border
}

// renderNotice renders the outcome of the last action.
func (m Model) renderNotice() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	if m.notice == "" {
		return styles.Text.Render(" ")
	}
	if m.noticeErr {
		return styles.DangerText.Render(m.notice)
	}
	return styles.InfoText.Render(m.notice)
}

// renderLogs renders the newest log lines, mostly delivery failures.
func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	if len(m.logs) == 0 {
		return ""
	}

	width := m.width - 2
	if width < 20 {
		width = 20
	}

	lines := make([]string, 0, len(m.logs))
	for _, entry := range m.logs {
		stamp := "        "
		if !entry.At.IsZero() {
			stamp = entry.At.Format("15:04:05")
		}
		msg := truncateMiddle(entry.Message, width-len(stamp)-1)
		lines = append(lines, bg.FillLine(
			styles.FaintText.Render(stamp)+bg.Space()+styles.MutedText.Render(msg), m.width))
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders key hints, or the full key list when help is open.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}
