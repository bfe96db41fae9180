// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/edgerewrite/pkg/operation"
	"github.com/walteh/edgerewrite/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	detailShift = 2  // extra spaces for the lines under a file
	nameWidth   = 35 // Base width for filename
	statusWidth = 12 // Width for status text
)

var _ operation.Reporter = (*Logger)(nil)

// 📦 RunInfo describes a run for the header
type RunInfo struct {
	Command string   // command name
	Passes  []string // pass names in order
	Files   int      // number of target files
	DryRun  bool     // whether changes are only previewed
}

// 🎯 Logger prints per-file results to the console and mirrors them to zerolog
type Logger struct {
	zlog     zerolog.Logger
	console  io.Writer
	mu       sync.Mutex
	current  *RunInfo
	showDiff bool
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:     zlog,
		console:  console,
		showDiff: true,
	}
}

// ShowDiff controls whether dry-run diffs are printed under each file.
func (l *Logger) ShowDiff(show bool) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showDiff = show
	return l
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func indent(extra int) string {
	return strings.Repeat(" ", fileIndent+extra)
}

// 📝 formatFile formats the headline of a file report
func (l *Logger) formatFile(path string, st status.FileStatus) string {
	var symbol rune
	var symbolColor color.Attribute
	switch st {
	case status.StatusRewritten:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case status.StatusPreview:
		symbol = '~'
		symbolColor = color.FgYellow
	case status.StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	return fmt.Sprintf("%s%s %s %s",
		indent(0),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, path),
		fmt.Sprintf("%-*s", statusWidth, st.String()))
}

// 📝 formatFix formats one fix line, the way the migration scripts reported them
func formatFix(f operation.Fix) string {
	if !f.Found {
		return fmt.Sprintf("%s%s %s", indent(detailShift), color.New(color.FgRed).Sprint("✗"), color.New(color.Faint).Sprint("not found "+f.Name))
	}
	line := fmt.Sprintf("%s%s fixed %s", indent(detailShift), color.New(color.FgGreen).Sprint("✓"), f.Name)
	if f.Count > 1 {
		line += fmt.Sprintf(" (x%d)", f.Count)
	}
	return line
}

// 📝 StartRun prints the run header
func (l *Logger) StartRun(ctx context.Context, info RunInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &info

	mode := "write"
	if info.DryRun {
		mode = "dry run"
	}

	fmt.Fprintf(l.console, "[%s %d files]\n",
		info.Command,
		info.Files)

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(strings.Join(info.Passes, ", ")),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(mode))

	l.zlog.Info().
		Str("command", info.Command).
		Strs("passes", info.Passes).
		Int("files", info.Files).
		Bool("dry_run", info.DryRun).
		Msg("starting run")
}

// 📝 ReportFile prints what happened to one file
func (l *Logger) ReportFile(ctx context.Context, report *operation.FileReport) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFile(report.Path, report.Status()))

	for _, pass := range report.Passes {
		for _, f := range pass.Fixes {
			fmt.Fprintln(l.console, formatFix(f))
		}
	}

	for i, before := range report.Before {
		after := 0
		if i < len(report.After) {
			after = report.After[i].Count
		}
		fmt.Fprintf(l.console, "%s%s %s %d → %d\n",
			indent(detailShift),
			color.New(color.FgCyan).Sprint("•"),
			before.Probe,
			before.Count,
			after)
	}

	for _, pass := range report.Passes {
		for _, u := range pass.Unmatched {
			fmt.Fprintf(l.console, "%s%s %s\n",
				indent(detailShift),
				color.New(color.FgYellow).Sprint("⚠"),
				u.String())
			l.zlog.Warn().
				Str("file", report.Path).
				Int("line", u.Line).
				Str("shape", u.Shape.String()).
				Str("reason", u.Reason).
				Msg("left for review")
		}
	}

	if report.BackupPath != "" {
		fmt.Fprintf(l.console, "%s%s backup %s\n", indent(detailShift), color.New(color.Faint).Sprint("•"), report.BackupPath)
	}

	if l.showDiff && report.Diff != "" {
		for _, line := range strings.Split(strings.TrimRight(report.Diff, "\n"), "\n") {
			fmt.Fprintf(l.console, "%s%s\n", indent(detailShift), colorDiffLine(line))
		}
	}

	l.zlog.Info().
		Str("file", report.Path).
		Str("status", report.Status().String()).
		Int("applied", report.Applied()).
		Int("unmatched", report.Unmatched()).
		Str("checksum", report.ChecksumAfter).
		Msg("file processed")
}

func colorDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return color.New(color.Bold).Sprint(line)
	case strings.HasPrefix(line, "+"):
		return color.New(color.FgGreen).Sprint(line)
	case strings.HasPrefix(line, "-"):
		return color.New(color.FgRed).Sprint(line)
	case strings.HasPrefix(line, "@@"):
		return color.New(color.FgCyan).Sprint(line)
	default:
		return line
	}
}

// 📝 ReportFailure prints a file that could not be processed
func (l *Logger) ReportFailure(ctx context.Context, path string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFile(path, status.StatusFailed))
	fmt.Fprintf(l.console, "%s%s\n", indent(detailShift), color.New(color.FgRed).Sprint(err.Error()))

	l.zlog.Error().Err(err).Str("file", path).Msg("file failed")
}

// 📝 EndRun prints the run summary
func (l *Logger) EndRun(ctx context.Context, summary *operation.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	verb := "rewrote"
	if l.current.DryRun {
		verb = "would rewrite"
	}

	line := fmt.Sprintf("%s %d of %d files", verb, summary.Changed(), len(summary.Reports))
	switch {
	case len(summary.Failed) > 0:
		fmt.Fprintf(l.console, "\n❌ %s\n", color.New(color.FgRed).Sprintf("%s, %d failed", line, len(summary.Failed)))
	case summary.Unmatched() > 0:
		fmt.Fprintf(l.console, "\n⚠️  %s\n", color.New(color.FgYellow).Sprintf("%s, %d left for review", line, summary.Unmatched()))
	default:
		fmt.Fprintf(l.console, "\n✅ %s\n", color.New(color.FgGreen).Sprint(line))
	}

	l.zlog.Info().
		Str("command", l.current.Command).
		Int("files", len(summary.Reports)).
		Int("changed", summary.Changed()).
		Int("unmatched", summary.Unmatched()).
		Int("failed", len(summary.Failed)).
		Msg("run complete")

	l.current = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("edgerewrite")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
