package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sleepsentinel/internal/monitor"
)

const gaugeWidth = 28

// renderMainScreen renders settings, speed gauges and the countdown
func (m Model) renderMainScreen() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Title.Render("Sleep Sentinel"))
	b.WriteString("  ")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n\n")

	settings := m.card("Settings", m.renderSettings())
	speeds := m.card("Network", m.renderSpeeds())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, settings, speeds))
	b.WriteString("\n")
	b.WriteString(m.card("Time until sleep", m.renderCountdown()))
	b.WriteString("\n")

	action := "Start"
	if m.snapshot.Active {
		action = "Stop"
	}
	b.WriteString(t.Hint.Render(fmt.Sprintf(
		"%s: Enter | Fields: Tab/↑/↓ | Help: ? | Logs: l | Theme: t | Quit: q", action)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderStatusLine() string {
	t := m.theme
	switch {
	case m.snapshot.Phase == monitor.PhaseTriggering:
		return t.Error.Render(statusSleeping)
	case m.statusIsError:
		return t.Error.Render("⚠ " + m.statusMessage)
	case m.snapshot.Active:
		return t.Active.Render(statusMonitoring)
	default:
		return t.Muted.Render(m.statusMessage)
	}
}

func (m Model) renderSettings() string {
	t := m.theme
	labels := [fieldCount]string{
		"Inactivity limit (s)",
		"Download threshold (Mbps)",
		"Upload threshold (Mbps)",
	}

	var b strings.Builder
	for i, label := range labels {
		marker := "  "
		if i == m.focus && !m.snapshot.Active {
			marker = t.Hint.Render("▸ ")
		}
		fmt.Fprintf(&b, "%s%s %s", marker, t.Label.Render(fmt.Sprintf("%-26s", label)), m.inputs[i].View())
		if i < len(labels)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderSpeeds() string {
	t := m.theme
	s := m.snapshot
	scale := gaugeScale(s.DownloadMbps, s.UploadMbps)

	lines := []string{
		t.Label.Render("Download ") + m.gaugeBar(s.DownloadMbps, scale, gaugeWidth) +
			t.Value.Render(fmt.Sprintf(" %8.2f Mbps", s.DownloadMbps)),
		t.Label.Render("Upload   ") + m.gaugeBar(s.UploadMbps, scale, gaugeWidth) +
			t.Value.Render(fmt.Sprintf(" %8.2f Mbps", s.UploadMbps)),
		t.Muted.Render(fmt.Sprintf("scale %.0f Mbps", scale)),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCountdown() string {
	t := m.theme
	s := m.snapshot
	if !s.Active {
		return t.Muted.Render("--:--  not monitoring")
	}

	limit := s.Config.InactivityLimitSeconds
	filled := 0.0
	if limit > 0 {
		filled = float64(s.SecondsUntilSleep) / float64(limit)
	}
	return t.Value.Render(formatCountdown(s.SecondsUntilSleep)) + "  " + m.gaugeBar(filled, 1, gaugeWidth*2)
}

// renderHelpScreen renders the help overlay
func (m Model) renderHelpScreen() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Title.Render("Help"))
	b.WriteString("\n\n")

	paragraphs := []string{
		"Sleep Sentinel keeps the computer awake while the network is busy and",
		"puts it to sleep once it has been idle for the inactivity limit.",
		"",
		"The countdown restarts whenever download or upload speed reaches its",
		"threshold, and whenever you use the keyboard or mouse.",
		"When it reaches zero the system goes to sleep after a short delay.",
		"",
		"While monitoring runs, the computer is prevented from idle-sleeping",
		"on its own.",
	}
	for _, p := range paragraphs {
		b.WriteString(t.Value.Render(p))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.Section.Render("Keys"))
	b.WriteString("\n")
	keys := [][2]string{
		{"Enter / s", "start or stop monitoring"},
		{"Tab / ↑ / ↓", "move between fields"},
		{"l", "show the log"},
		{"t", "toggle dark/light theme"},
		{"? / h", "toggle this help"},
		{"Esc", "back"},
		{"q / Ctrl+C", "quit"},
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s %s\n", t.Label.Render(fmt.Sprintf("%-12s", k[0])), t.Muted.Render(k[1]))
	}

	return b.String()
}

// renderLogsScreen renders the log viewer
func (m Model) renderLogsScreen() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Title.Render("Log"))
	if path := m.controller.LogPath(); path != "" {
		b.WriteString("  ")
		b.WriteString(t.Muted.Render(path))
	}
	b.WriteString("\n\n")

	if m.logsError != "" {
		b.WriteString(t.Error.Render(m.logsError))
		b.WriteString("\n")
	} else {
		b.WriteString(m.logs.View())
		b.WriteString("\n")
		b.WriteString(t.Muted.Render(fmt.Sprintf("%.0f%%", m.logs.ScrollPercent()*100)))
		b.WriteString("\n")
	}

	b.WriteString(t.Hint.Render("Scroll: ↑/↓/PgUp/PgDn | Reload: r | Back: Esc"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) card(title, body string) string {
	return m.theme.Card.Render(m.theme.Section.Render(title) + "\n" + body)
}

// gaugeBar draws value as a fraction of scale
func (m Model) gaugeBar(value, scale float64, width int) string {
	frac := 0.0
	if scale > 0 {
		frac = value / scale
	}
	if frac < 0 || math.IsNaN(frac) {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return "[" + strings.Repeat(m.theme.GaugeFill, filled) + strings.Repeat(m.theme.GaugeEmpty, width-filled) + "]"
}

// gaugeScale returns the full-scale value shared by both speed gauges
func gaugeScale(download, upload float64) float64 {
	return math.Max(gaugeMinScaleMbps, math.Max(download, upload))
}

// formatCountdown renders seconds as mm:ss
func formatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
