package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"sleepsentinel/internal/logging"
	"sleepsentinel/internal/monitor"
)

// refreshInterval is how often the display polls the engine
const refreshInterval = 500 * time.Millisecond

const (
	fieldLimit = iota
	fieldDownload
	fieldUpload
	fieldCount
)

const down = "down"

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model represents the TUI application state
type Model struct {
	quitting bool

	controller Controller
	activity   ActivitySignaler
	logger     *logging.Logger

	currentScreen Screen
	theme         Theme
	width         int
	height        int

	// Settings form
	inputs []textinput.Model
	focus  int

	// Monitoring state
	snapshot      monitor.Snapshot
	statusMessage string
	statusIsError bool

	// Logs Screen State
	logs      viewport.Model
	logsError string
}

// NewModel creates a new TUI model with the settings form prefilled from
// the controller's configured thresholds. activity may be nil.
func NewModel(controller Controller, activity ActivitySignaler, logger *logging.Logger) Model {
	m := Model{
		controller:    controller,
		activity:      activity,
		logger:        logger,
		currentScreen: ScreenMain,
		theme:         darkTheme(),
		width:         80,
		height:        24,
		inputs:        newInputs(),
		statusMessage: statusWaiting,
		logs:          viewport.New(78, 18),
	}
	m.fillInputs(controller.MonitorDefaults())
	m.inputs[m.focus].Focus()
	m.snapshot = controller.Snapshot()
	return m
}

func newInputs() []textinput.Model {
	placeholders := [fieldCount]string{"60", "10", "10"}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 12
		ti.Width = 12
		inputs[i] = ti
	}
	return inputs
}

func (m *Model) fillInputs(cfg monitor.Config) {
	m.inputs[fieldLimit].SetValue(strconv.Itoa(cfg.InactivityLimitSeconds))
	m.inputs[fieldDownload].SetValue(formatMbps(cfg.DownloadThresholdMbps))
	m.inputs[fieldUpload].SetValue(formatMbps(cfg.UploadThresholdMbps))
}

func formatMbps(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.snapshot = m.controller.Snapshot()
		return m, tickCmd()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.logs.Width = max(msg.Width-2, 10)
		m.logs.Height = max(msg.Height-6, 3)
		return m, nil
	case tea.MouseMsg:
		m.signalActivity()
		if m.currentScreen == ScreenLogs {
			var cmd tea.Cmd
			m.logs, cmd = m.logs.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		m.signalActivity()
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) signalActivity() {
	if m.activity != nil {
		m.activity.Signal()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if next, handled, cmd := m.handleQuitKeys(key); handled {
		return next, cmd
	}

	if next, handled := m.handleEscapeKey(key); handled {
		return next, nil
	}

	if next, handled := m.handleShortcutKeys(key); handled {
		return next, nil
	}

	if next, handled, cmd := m.handleLogsScreenKeys(msg); handled {
		return next, cmd
	}

	if next, handled, cmd := m.handleMainScreenKeys(msg); handled {
		return next, cmd
	}

	return m, nil
}

func (m Model) handleQuitKeys(key string) (tea.Model, bool, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, true, tea.Quit
	}
	return m, false, nil
}

func (m Model) handleEscapeKey(key string) (tea.Model, bool) {
	if key == "esc" && m.currentScreen != ScreenMain {
		m.currentScreen = ScreenMain
		return m, true
	}
	return m, false
}

func (m Model) handleShortcutKeys(key string) (tea.Model, bool) {
	switch key {
	case "?", "h":
		if m.currentScreen == ScreenHelp {
			m.currentScreen = ScreenMain
		} else {
			m.currentScreen = ScreenHelp
		}
		return m, true
	case "l":
		if m.currentScreen == ScreenLogs {
			m.currentScreen = ScreenMain
			return m, true
		}
		m.currentScreen = ScreenLogs
		return m.loadLogs(), true
	case "t":
		if m.theme.Name == "dark" {
			m.theme = lightTheme()
		} else {
			m.theme = darkTheme()
		}
		return m, true
	}
	return m, false
}

func (m Model) handleLogsScreenKeys(msg tea.KeyMsg) (tea.Model, bool, tea.Cmd) {
	if m.currentScreen != ScreenLogs {
		return m, false, nil
	}

	if msg.String() == "r" {
		return m.loadLogs(), true, nil
	}

	var cmd tea.Cmd
	m.logs, cmd = m.logs.Update(msg)
	return m, true, cmd
}

func (m Model) handleMainScreenKeys(msg tea.KeyMsg) (tea.Model, bool, tea.Cmd) {
	if m.currentScreen != ScreenMain {
		return m, false, nil
	}

	switch msg.String() {
	case "enter", "s":
		return m.toggleMonitoring(), true, nil
	case "tab", down:
		return m.moveFocus(1), true, nil
	case "shift+tab", "up":
		return m.moveFocus(-1), true, nil
	}

	if m.snapshot.Active || !isEditKey(msg) {
		return m, false, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, true, cmd
}

// isEditKey accepts digits, the decimal point and cursor editing keys
func isEditKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete, tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd:
		return true
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if (r < '0' || r > '9') && r != '.' {
				return false
			}
		}
		return len(msg.Runes) > 0
	}
	return false
}

func (m Model) moveFocus(delta int) Model {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	m.inputs[m.focus].Focus()
	return m
}

// toggleMonitoring starts a session from the form, or stops the running one
func (m Model) toggleMonitoring() Model {
	if m.controller.Snapshot().Active {
		m.controller.StopMonitoring()
		m.setStatus(statusStopped, false)
		m.snapshot = m.controller.Snapshot()
		return m
	}

	cfg, err := m.readInputs()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		m.logger.Warn("tui.input.invalid", "Invalid settings entered", map[string]interface{}{
			"error": err.Error(),
		})
		m.fillInputs(monitor.DefaultConfig())
		m.setStatus(statusInvalidInput, true)
		return m
	}

	if err := m.controller.StartMonitoring(cfg); err != nil {
		m.setStatus(fmt.Sprintf("Could not start monitoring: %v", err), true)
		return m
	}

	m.setStatus(statusMonitoring, false)
	m.snapshot = m.controller.Snapshot()
	return m
}

func (m Model) readInputs() (monitor.Config, error) {
	limit, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldLimit].Value()))
	if err != nil {
		return monitor.Config{}, fmt.Errorf("inactivity limit: %w", err)
	}
	download, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[fieldDownload].Value()), 64)
	if err != nil {
		return monitor.Config{}, fmt.Errorf("download threshold: %w", err)
	}
	upload, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[fieldUpload].Value()), 64)
	if err != nil {
		return monitor.Config{}, fmt.Errorf("upload threshold: %w", err)
	}
	return monitor.Config{
		InactivityLimitSeconds: limit,
		DownloadThresholdMbps:  download,
		UploadThresholdMbps:    upload,
	}, nil
}

func (m *Model) setStatus(message string, isError bool) {
	m.statusMessage = message
	m.statusIsError = isError
}

// loadLogs reads the diagnostic log into the viewer
func (m Model) loadLogs() Model {
	path := m.controller.LogPath()
	if path == "" {
		m.logsError = "Logging to the terminal stream; no log file to show."
		m.logs.SetContent("")
		return m
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.logsError = "Log file not found: " + path
		} else {
			m.logsError = fmt.Sprintf("Failed to read log file: %v", err)
		}
		m.logs.SetContent("")
		return m
	}

	m.logsError = ""
	m.logs.SetContent(string(data))
	m.logs.GotoBottom()
	return m
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.currentScreen {
	case ScreenHelp:
		return m.renderHelpScreen()
	case ScreenLogs:
		return m.renderLogsScreen()
	default:
		return m.renderMainScreen()
	}
}
