package hooks

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stackvity/tabs2spaces/pkg/converter"
)

// --- TUI Message Structs ---

// FileDiscoveredMsg signals that a file was selected for processing.
type FileDiscoveredMsg struct{ Path string }

// FileStatusUpdateMsg signals a change in a file's processing status.
type FileStatusUpdateMsg struct {
	Path     string
	Status   converter.Status
	Message  string
	Duration time.Duration
}

// RunCompleteMsg signals the completion of the entire conversion run.
type RunCompleteMsg struct{ Report converter.Report }

// --- Hook Implementation ---

// CLIHooks implements the converter.Hooks interface, bridging library events
// either to the TUI program or to the verbose log.
type CLIHooks struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiProgram     TUIProgram
}

// TUIProgram defines the interface needed to interact with the Bubble Tea program.
type TUIProgram interface {
	Send(msg tea.Msg)
}

// NoOpTUIProgram discards every message.
type NoOpTUIProgram struct{}

// Send implements TUIProgram.
func (n *NoOpTUIProgram) Send(msg tea.Msg) {}

// NewCLIHooks creates a new CLIHooks instance. A nil tuiProg is replaced by
// NoOpTUIProgram.
func NewCLIHooks(logger *slog.Logger, tuiEnabled, verboseEnabled bool, tuiProg TUIProgram) *CLIHooks {
	if tuiProg == nil {
		tuiProg = &NoOpTUIProgram{}
	}
	return &CLIHooks{
		logger:         logger,
		tuiEnabled:     tuiEnabled,
		verboseEnabled: verboseEnabled,
		tuiProgram:     tuiProg,
	}
}

// OnFileDiscovered implements converter.Hooks.
func (h *CLIHooks) OnFileDiscovered(path string) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(FileDiscoveredMsg{Path: path})
	} else if h.verboseEnabled {
		h.logger.Debug("File discovered", slog.String("path", path))
	}
	return nil
}

// OnFileStatusUpdate implements converter.Hooks. It is called concurrently.
func (h *CLIHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(FileStatusUpdateMsg{
			Path:     path,
			Status:   status,
			Message:  message,
			Duration: duration,
		})
		return nil
	}
	if !h.verboseEnabled {
		// Failures reach the user through the processor log and the report.
		return nil
	}

	logLevel := slog.LevelDebug
	attrs := []any{
		slog.String("path", path),
		slog.String("status", string(status)),
	}
	if duration > 0 {
		attrs = append(attrs, slog.Duration("duration", duration))
	}
	if message != "" {
		logKey := "message"
		if status == converter.StatusFailed {
			logKey = "error"
		}
		attrs = append(attrs, slog.String(logKey, message))
	}
	if status == converter.StatusChanged || status == converter.StatusSkipped {
		logLevel = slog.LevelInfo
	}
	h.logger.Log(context.Background(), logLevel, "File status updated", attrs...)
	return nil
}

// OnRunComplete implements converter.Hooks. The TUI stops when it receives
// the report; the text report is written by the caller.
func (h *CLIHooks) OnRunComplete(report converter.Report) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(RunCompleteMsg{Report: report})
	}
	return nil
}
