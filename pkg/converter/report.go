package converter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// Report summarizes the result of a run over one or more arguments.
type Report struct {
	Summary      ReportSummary `json:"summary"`
	Files        []FileResult  `json:"files"`
	SkippedFiles []SkippedInfo `json:"skippedFiles"`
	Errors       []ErrorInfo   `json:"errors"`
}

// ReportSummary contains aggregated statistics for a run.
type ReportSummary struct {
	Arguments       []string       `json:"arguments"`
	ProfileUsed     string         `json:"profileUsed,omitempty"`
	ConfigFilePath  string         `json:"configFilePath,omitempty"`
	TabWidth        int            `json:"tabWidth"`
	LineEnding      LineEndingMode `json:"lineEnding"`
	Trim            bool           `json:"trim"`
	Recursive       bool           `json:"recursive"`
	CheckOnly       bool           `json:"checkOnly"`
	Concurrency     int            `json:"concurrency"`
	FilesScanned    int            `json:"filesScanned"`
	ChangedCount    int            `json:"changedCount"`
	UnchangedCount  int            `json:"unchangedCount"`
	SkippedCount    int            `json:"skippedCount"`
	ErrorCount      int            `json:"errorCount"`
	FailedArguments int            `json:"failedArguments"`
	DurationSeconds float64        `json:"durationSeconds"`
	Timestamp       time.Time      `json:"timestamp"`
	SchemaVersion   string         `json:"schemaVersion,omitempty"`
}

// FileResult details a single file that was read and transformed.
type FileResult struct {
	Path        string `json:"path"`
	Status      Status `json:"status"` // StatusChanged or StatusUnchanged
	SizeBytes   int64  `json:"sizeBytes"`
	OutputBytes int64  `json:"outputBytes"`
	DurationMs  int64  `json:"durationMs"`
}

// SkippedInfo details a file that was intentionally left alone.
type SkippedInfo struct {
	Path    string `json:"path"`
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

// ErrorInfo details an error attributed to one argument, and to one file of
// it when Path is set.
type ErrorInfo struct {
	Argument string `json:"argument,omitempty"`
	Path     string `json:"path,omitempty"`
	Error    string `json:"error"`
}

// Merge folds other into r: file lists are concatenated, counters added and
// durations summed. Run-wide settings of r are kept.
func (r *Report) Merge(other Report) {
	r.Summary.Arguments = append(r.Summary.Arguments, other.Summary.Arguments...)
	r.Summary.FilesScanned += other.Summary.FilesScanned
	r.Summary.ChangedCount += other.Summary.ChangedCount
	r.Summary.UnchangedCount += other.Summary.UnchangedCount
	r.Summary.SkippedCount += other.Summary.SkippedCount
	r.Summary.ErrorCount += other.Summary.ErrorCount
	r.Summary.FailedArguments += other.Summary.FailedArguments
	r.Summary.DurationSeconds += other.Summary.DurationSeconds
	r.Files = append(r.Files, other.Files...)
	r.SkippedFiles = append(r.SkippedFiles, other.SkippedFiles...)
	r.Errors = append(r.Errors, other.Errors...)
}

// sortEntries orders the entry lists of a single-argument report by path.
// Merged reports keep argument order.
func (r *Report) sortEntries() {
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
	sort.Slice(r.SkippedFiles, func(i, j int) bool { return r.SkippedFiles[i].Path < r.SkippedFiles[j].Path })
	sort.SliceStable(r.Errors, func(i, j int) bool { return r.Errors[i].Path < r.Errors[j].Path })
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteText writes a short human-readable summary followed by one line per
// changed file, skipped file and error.
func (r Report) WriteText(w io.Writer) error {
	s := r.Summary
	verb := "converted"
	if s.CheckOnly {
		verb = "would convert"
	}
	lines := []string{
		fmt.Sprintf("tabs2spaces: %d file(s) scanned, %d %s, %d unchanged, %d skipped, %d error(s) in %.2fs",
			s.FilesScanned, s.ChangedCount, verb, s.UnchangedCount, s.SkippedCount, s.ErrorCount, s.DurationSeconds),
	}
	for _, f := range r.Files {
		if f.Status == StatusChanged {
			lines = append(lines, fmt.Sprintf("  changed  %s (%d -> %d bytes)", f.Path, f.SizeBytes, f.OutputBytes))
		}
	}
	for _, sk := range r.SkippedFiles {
		lines = append(lines, fmt.Sprintf("  skipped  %s (%s)", sk.Path, sk.Reason))
	}
	for _, e := range r.Errors {
		lines = append(lines, fmt.Sprintf("  error    %s", e.Error))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

// Write renders the report in the given format. OutputFormatNone writes nothing.
func (r Report) Write(w io.Writer, format OutputFormat) error {
	switch format {
	case OutputFormatJSON:
		return r.WriteJSON(w)
	case OutputFormatNone:
		return nil
	default:
		return r.WriteText(w)
	}
}
