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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edgerewrite/pkg/status"
	"github.com/walteh/edgerewrite/pkg/text"
)

// 🔧 Options controls how a file is processed
type Options struct {
	// Files reads and writes the sources; nil means the working directory
	Files status.FileManager

	// DryRun renders a diff instead of writing
	DryRun bool

	// Backup copies the original to <file>.bak before writing
	Backup bool

	// Probes are counted before and after the passes
	Probes []string
}

// ProbeCount is the number of times a probe occurs in a file.
type ProbeCount struct {
	Probe string
	Count int
}

// 📄 FileReport is everything that happened to one file
type FileReport struct {
	Path   string
	Passes []PassReport
	Before []ProbeCount
	After  []ProbeCount

	Changed    bool   // the passes changed the content
	Written    bool   // the new content is on disk
	DryRun     bool   // changes were only previewed
	Diff       string // unified diff, dry run only
	BackupPath string // empty when no backup was taken

	ChecksumBefore string
	ChecksumAfter  string
}

// Status reports the file's outcome for tracking.
func (r *FileReport) Status() status.FileStatus {
	switch {
	case r.Written:
		return status.StatusRewritten
	case r.Changed && r.DryRun:
		return status.StatusPreview
	default:
		return status.StatusUnchanged
	}
}

// Unmatched counts the idiom candidates left for review.
func (r *FileReport) Unmatched() int {
	n := 0
	for _, p := range r.Passes {
		n += len(p.Unmatched)
	}
	return n
}

// Applied counts the rewrites of every pass.
func (r *FileReport) Applied() int {
	n := 0
	for _, p := range r.Passes {
		n += p.Applied()
	}
	return n
}

// Remaining is what a run over this content would still rewrite or flag.
// Zero means the file has converged.
func (r *FileReport) Remaining() int {
	return r.Applied() + r.Unmatched()
}

func countProbes(content string, probes []string) []ProbeCount {
	out := make([]ProbeCount, 0, len(probes))
	for _, p := range probes {
		out = append(out, ProbeCount{Probe: p, Count: text.Count(content, p)})
	}
	return out
}

// 🏃 Process reads path once, runs every pass in memory in order and writes
// the result once. Read and write errors abort the file; a pass that matches
// nothing is a no-op.
func Process(ctx context.Context, path string, passes []Pass, opts Options) (*FileReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()
	ctx = logger.WithContext(ctx)

	files := opts.Files
	if files == nil {
		files = status.New(".")
	}

	raw, err := files.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	original := string(raw)

	report := &FileReport{
		Path:           path,
		DryRun:         opts.DryRun,
		Before:         countProbes(original, opts.Probes),
		ChecksumBefore: status.Checksum(raw),
	}

	content := original
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("processing %s: %w", path, err)
		}
		next, pr, err := p.Apply(ctx, content)
		if err != nil {
			return nil, errors.Errorf("%s pass on %s: %w", p.Name(), path, err)
		}
		logger.Debug().
			Str("pass", p.Name()).
			Int("applied", pr.Applied()).
			Int("unmatched", len(pr.Unmatched)).
			Msg("pass complete")
		report.Passes = append(report.Passes, pr)
		content = next
	}

	report.After = countProbes(content, opts.Probes)
	report.ChecksumAfter = status.Checksum([]byte(content))
	report.Changed = content != original

	if !report.Changed {
		return report, nil
	}

	if opts.DryRun {
		diff, err := UnifiedDiff(path, original, content)
		if err != nil {
			return nil, err
		}
		report.Diff = diff
		return report, nil
	}

	if opts.Backup {
		backup, err := files.BackupFile(ctx, path)
		if err != nil {
			return nil, errors.Errorf("backing up %s: %w", path, err)
		}
		report.BackupPath = backup
	}

	if err := files.WriteFileAtomic(ctx, path, []byte(content)); err != nil {
		return nil, errors.Errorf("writing %s: %w", path, err)
	}
	report.Written = true

	logger.Info().Int("applied", report.Applied()).Msg("rewrote file")
	return report, nil
}
