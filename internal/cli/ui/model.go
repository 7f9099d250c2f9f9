// Package ui implements the Bubble Tea progress view shown with --tui.
package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stackvity/tabs2spaces/internal/cli/hooks"
	"github.com/stackvity/tabs2spaces/pkg/converter"
)

const listHeightMargin = 2 // header and footer lines

const (
	phaseStarting   = "Starting..."
	phaseConverting = "Converting..."
	phaseComplete   = "Complete"
)

// Model represents the state of the TUI application.
// Bubble Tea calls Update and View from a single goroutine, and hook events
// arrive as messages, so the model needs no locking.
type Model struct {
	list    list.Model
	spinner spinner.Model
	version string

	width       int
	height      int
	initialized bool

	fileItems []listItem
	itemMap   map[string]int // path -> index in fileItems
	// dirty is set when fileItems changed since the list was last refreshed.
	// The list is refreshed on spinner ticks to bound re-rendering.
	dirty bool

	summary      Summary
	phaseMessage string
	quitting     bool
	done         bool
}

// listItem represents a single file in the TUI list.
type listItem struct {
	path     string
	status   converter.Status
	message  string
	duration time.Duration
}

// Summary holds the aggregated statistics displayed in the TUI footer.
type Summary struct {
	Discovered int
	Changed    int
	Unchanged  int
	Skipped    int
	Failed     int
	StartTime  time.Time
}

// NewModel creates the initial model for the TUI.
func NewModel(version string) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorStatusProcessing)

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorSelectedFg).
		Background(ColorSelectedBg).
		Bold(true).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorSelectedDescFg).
		Background(ColorSelectedBg).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.
		Foreground(ColorNormalFg).Padding(0, 0, 0, 1)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.
		Foreground(ColorNormalDescFg).Padding(0, 0, 0, 1)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return &Model{
		list:         l,
		spinner:      s,
		version:      version,
		summary:      Summary{StartTime: time.Now()},
		phaseMessage: phaseStarting,
		itemMap:      make(map[string]int),
	}
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles key presses, window resizes and hook events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, max(m.height-listHeightMargin, 1))
		m.initialized = true

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		var listCmd tea.Cmd
		m.list, listCmd = m.list.Update(msg)
		cmds = append(cmds, listCmd)

	case spinner.TickMsg:
		if m.quitting || m.done {
			return m, nil
		}
		var spinnerCmd tea.Cmd
		m.spinner, spinnerCmd = m.spinner.Update(msg)
		cmds = append(cmds, spinnerCmd, m.refreshList())

	case hooks.FileDiscoveredMsg:
		if _, exists := m.itemMap[msg.Path]; !exists {
			m.addItem(listItem{path: msg.Path, status: converter.StatusPending})
		}
		if m.phaseMessage == phaseStarting {
			m.phaseMessage = phaseConverting
		}

	case hooks.FileStatusUpdateMsg:
		m.applyStatus(msg)
		if m.phaseMessage == phaseStarting {
			m.phaseMessage = phaseConverting
		}

	case hooks.RunCompleteMsg:
		s := msg.Report.Summary
		m.summary.Changed = s.ChangedCount
		m.summary.Unchanged = s.UnchangedCount
		m.summary.Skipped = s.SkippedCount
		m.summary.Failed = s.ErrorCount
		m.phaseMessage = phaseComplete
		m.done = true
		// The final report is printed after the program exits.
		cmds = append(cmds, m.refreshList(), tea.Quit)
	}

	return m, tea.Batch(cmds...)
}

// Interrupted reports whether the user quit before the run completed.
func (m *Model) Interrupted() bool {
	return m.quitting && !m.done
}

func (m *Model) addItem(item listItem) {
	m.fileItems = append(m.fileItems, item)
	m.itemMap[item.path] = len(m.fileItems) - 1
	m.summary.Discovered++
	if item.status.IsFinal() {
		m.count(item.status, 1)
	}
	m.dirty = true
}

// applyStatus records a status change and keeps the counters in step with
// transitions into and out of final states.
func (m *Model) applyStatus(msg hooks.FileStatusUpdateMsg) {
	idx, ok := m.itemMap[msg.Path]
	if !ok {
		m.addItem(listItem{path: msg.Path, status: msg.Status, message: msg.Message, duration: msg.Duration})
		return
	}
	item := &m.fileItems[idx]
	if item.status.IsFinal() {
		m.count(item.status, -1)
	}
	if msg.Status.IsFinal() {
		m.count(msg.Status, 1)
	}
	item.status = msg.Status
	item.message = msg.Message
	item.duration = msg.Duration
	m.dirty = true
}

func (m *Model) count(status converter.Status, delta int) {
	switch status {
	case converter.StatusChanged:
		m.summary.Changed += delta
	case converter.StatusUnchanged:
		m.summary.Unchanged += delta
	case converter.StatusSkipped:
		m.summary.Skipped += delta
	case converter.StatusFailed:
		m.summary.Failed += delta
	}
}

// refreshList pushes fileItems into the list component if they changed.
func (m *Model) refreshList() tea.Cmd {
	if !m.dirty {
		return nil
	}
	m.dirty = false
	items := make([]list.Item, len(m.fileItems))
	for i, item := range m.fileItems {
		items[i] = item
	}
	return m.list.SetItems(items)
}

// View renders the header, the file list and the summary footer.
func (m *Model) View() string {
	if m.quitting {
		return "Exiting...\n"
	}
	if !m.initialized {
		return phaseStarting
	}

	headerLeft := fmt.Sprintf("tabs2spaces %s", m.version)
	headerRight := m.phaseMessage
	if !m.done {
		headerRight = m.spinner.View() + " " + m.phaseMessage
	}
	header := HeaderStyle.Width(m.width).Render(spread(m.width, headerLeft, headerRight))

	elapsed := time.Since(m.summary.StartTime).Round(time.Millisecond)
	footerLeft := fmt.Sprintf("Changed: %d | Unchanged: %d | Skipped: %d | Failed: %d | Files: %d | Elapsed: %s",
		m.summary.Changed, m.summary.Unchanged, m.summary.Skipped, m.summary.Failed, m.summary.Discovered, elapsed)
	footer := FooterStyle.Width(m.width).Render(spread(m.width, footerLeft, "q: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), footer)
}

// spread places left and right at the edges of a line of the given width.
func spread(width int, left, right string) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2 // style padding
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.PlaceHorizontal(gap, lipgloss.Center, " "), right)
}

// FilterValue implements the list.Item interface.
func (i listItem) FilterValue() string { return i.path }

// Title implements the list.Item interface.
func (i listItem) Title() string { return i.path }

// Description implements the list.Item interface.
func (i listItem) Description() string {
	var statusStyle lipgloss.Style
	var statusIcon string
	switch i.status {
	case converter.StatusChanged:
		statusStyle, statusIcon = StatusStyleChanged, "✓"
	case converter.StatusUnchanged:
		statusStyle, statusIcon = StatusStyleUnchanged, "="
	case converter.StatusFailed:
		statusStyle, statusIcon = StatusStyleFailed, "✗"
	case converter.StatusSkipped:
		statusStyle, statusIcon = StatusStyleSkipped, "S"
	case converter.StatusProcessing:
		statusStyle, statusIcon = StatusStyleProcessing, "…"
	default:
		statusStyle, statusIcon = StatusStylePending, " "
	}

	details := ""
	switch i.status {
	case converter.StatusFailed, converter.StatusSkipped:
		details = i.message
	case converter.StatusChanged, converter.StatusUnchanged:
		details = formatDuration(i.duration)
	}
	return fmt.Sprintf("%s %s", statusStyle.Render("["+statusIcon+"]"), details)
}

// formatDuration formats duration for display. Zero renders as "".
func formatDuration(d time.Duration) string {
	switch {
	case d == 0:
		return ""
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// --- Styles ---

const (
	ColorHeaderFg = lipgloss.Color("252")
	ColorHeaderBg = lipgloss.Color("62")

	ColorFooterFg = lipgloss.Color("252")
	ColorFooterBg = lipgloss.Color("56")

	ColorNormalFg     = lipgloss.Color("250")
	ColorNormalDescFg = lipgloss.Color("244")

	ColorSelectedFg     = lipgloss.Color("255")
	ColorSelectedBg     = lipgloss.Color("56")
	ColorSelectedDescFg = lipgloss.Color("248")

	ColorStatusChanged    = lipgloss.Color("40")
	ColorStatusUnchanged  = lipgloss.Color("39")
	ColorStatusFailed     = lipgloss.Color("196")
	ColorStatusSkipped    = lipgloss.Color("214")
	ColorStatusPending    = lipgloss.Color("244")
	ColorStatusProcessing = lipgloss.Color("205")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Background(ColorFooterBg).
			Padding(0, 1)

	StatusStyleChanged    = lipgloss.NewStyle().Foreground(ColorStatusChanged)
	StatusStyleUnchanged  = lipgloss.NewStyle().Foreground(ColorStatusUnchanged)
	StatusStyleFailed     = lipgloss.NewStyle().Foreground(ColorStatusFailed)
	StatusStyleSkipped    = lipgloss.NewStyle().Foreground(ColorStatusSkipped)
	StatusStylePending    = lipgloss.NewStyle().Foreground(ColorStatusPending)
	StatusStyleProcessing = lipgloss.NewStyle().Foreground(ColorStatusProcessing)
)
