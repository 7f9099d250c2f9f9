package ui

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/tabs2spaces/internal/cli/hooks"
	"github.com/stackvity/tabs2spaces/pkg/converter"
)

// newTestModel returns a model that has already received its window size.
func newTestModel(width, height int) *Model {
	m := NewModel("v1.0.0")
	_, _ = m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return m
}

func update(t *testing.T, m *Model, msg tea.Msg) (*Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(*Model)
	require.True(t, ok)
	return updated, cmd
}

func TestModel_Init(t *testing.T) {
	cmd := newTestModel(80, 25).Init()
	require.NotNil(t, cmd)
	_, ok := cmd().(spinner.TickMsg)
	assert.True(t, ok, "Init should return a command that produces spinner.TickMsg")
}

func TestModel_Update_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(key.String(), func(t *testing.T) {
			m, cmd := update(t, newTestModel(80, 25), key)
			assert.True(t, m.quitting)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m, cmd := update(t, newTestModel(80, 25), tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Nil(t, cmd)
	assert.True(t, m.initialized)
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 30-listHeightMargin, m.list.Height())
	assert.Equal(t, 100, m.list.Width())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 10, Height: 1})
	assert.Equal(t, 1, m.list.Height(), "list keeps at least one row")
}

func TestModel_Update_FileDiscovered(t *testing.T) {
	m, _ := update(t, newTestModel(80, 25), hooks.FileDiscoveredMsg{Path: "src/main.c"})
	require.Len(t, m.fileItems, 1)
	assert.Equal(t, converter.StatusPending, m.fileItems[0].status)
	assert.Equal(t, 1, m.summary.Discovered)
	assert.Equal(t, phaseConverting, m.phaseMessage)
	assert.True(t, m.dirty)

	m, _ = update(t, m, hooks.FileDiscoveredMsg{Path: "src/main.c"})
	assert.Len(t, m.fileItems, 1, "duplicate discovery is ignored")
	assert.Equal(t, 1, m.summary.Discovered)
}

func TestModel_Update_FileStatusUpdate(t *testing.T) {
	m, _ := update(t, newTestModel(80, 25), hooks.FileDiscoveredMsg{Path: "a.c"})
	m, _ = update(t, m, hooks.FileStatusUpdateMsg{Path: "a.c", Status: converter.StatusProcessing})
	assert.Zero(t, m.summary.Changed)

	m, _ = update(t, m, hooks.FileStatusUpdateMsg{Path: "a.c", Status: converter.StatusChanged, Duration: 3 * time.Millisecond})
	assert.Equal(t, 1, m.summary.Changed)
	assert.Equal(t, 3*time.Millisecond, m.fileItems[0].duration)

	// A file rejected by a filter is reported without a discovery event.
	m, _ = update(t, m, hooks.FileStatusUpdateMsg{Path: "b.o", Status: converter.StatusSkipped, Message: "binary"})
	assert.Equal(t, 1, m.summary.Skipped)
	assert.Equal(t, 2, m.summary.Discovered)

	// A repeated final status does not double count.
	m, _ = update(t, m, hooks.FileStatusUpdateMsg{Path: "b.o", Status: converter.StatusFailed, Message: "boom"})
	assert.Equal(t, 0, m.summary.Skipped)
	assert.Equal(t, 1, m.summary.Failed)
}

func TestModel_Update_SpinnerRefreshesList(t *testing.T) {
	m := newTestModel(80, 25)
	m, _ = update(t, m, hooks.FileDiscoveredMsg{Path: "a.c"})
	m, _ = update(t, m, hooks.FileDiscoveredMsg{Path: "b.c"})
	assert.Empty(t, m.list.Items(), "list is refreshed lazily")

	m, cmd := update(t, m, m.spinner.Tick())
	assert.NotNil(t, cmd)
	assert.False(t, m.dirty)
	assert.Len(t, m.list.Items(), 2)
}

func TestModel_Update_RunCompleteQuits(t *testing.T) {
	report := converter.Report{Summary: converter.ReportSummary{ChangedCount: 4, UnchangedCount: 2, SkippedCount: 1, ErrorCount: 3}}
	m, cmd := update(t, newTestModel(80, 25), hooks.RunCompleteMsg{Report: report})

	assert.True(t, m.done)
	assert.Equal(t, phaseComplete, m.phaseMessage)
	assert.Equal(t, Summary{Changed: 4, Unchanged: 2, Skipped: 1, Failed: 3, StartTime: m.summary.StartTime}, m.summary)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = update(t, m, m.spinner.Tick())
	assert.Nil(t, cmd, "spinner stops once the run is complete")
}

func TestModel_Interrupted(t *testing.T) {
	m, _ := update(t, newTestModel(80, 25), tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.Interrupted())

	m, _ = update(t, newTestModel(80, 25), hooks.RunCompleteMsg{})
	assert.False(t, m.Interrupted())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.False(t, m.Interrupted(), "quitting after completion is not an interruption")
}
