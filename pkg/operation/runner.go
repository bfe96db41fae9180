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
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/edgerewrite/pkg/status"
)

// 📣 Reporter receives the outcome of every file, one call at a time
type Reporter interface {
	ReportFile(ctx context.Context, report *FileReport)
	ReportFailure(ctx context.Context, path string, err error)
}

// 📊 Summary collects the reports of a run, in input order
type Summary struct {
	Reports []*FileReport
	Failed  []string
}

// Changed counts files whose content changed.
func (s *Summary) Changed() int {
	n := 0
	for _, r := range s.Reports {
		if r != nil && r.Changed {
			n++
		}
	}
	return n
}

// Unmatched counts idiom candidates left for review across all files.
func (s *Summary) Unmatched() int {
	n := 0
	for _, r := range s.Reports {
		if r != nil {
			n += r.Unmatched()
		}
	}
	return n
}

// Remaining sums FileReport.Remaining over all files.
func (s *Summary) Remaining() int {
	n := 0
	for _, r := range s.Reports {
		if r != nil {
			n += r.Remaining()
		}
	}
	return n
}

// 🏃 Runner processes a list of files
type Runner struct {
	jobs     int
	tracker  status.StatusReporter
	reporter Reporter

	mu        sync.Mutex
	processed int
}

// 🏗️ NewRunner creates a new runner. jobs <= 1 processes files one after
// the other; more processes up to jobs distinct files at once.
func NewRunner(jobs int, tracker status.StatusReporter, reporter Reporter) *Runner {
	if jobs < 1 {
		jobs = 1
	}
	return &Runner{
		jobs:     jobs,
		tracker:  tracker,
		reporter: reporter,
	}
}

// 🏃 Run processes every path. A failing file does not stop the others;
// all failures are returned together. Duplicate paths are processed once, so
// no two workers ever write the same file.
func (r *Runner) Run(ctx context.Context, paths []string, passes []Pass, opts Options) (*Summary, error) {
	paths = dedupe(paths)

	r.mu.Lock()
	r.processed = 0
	r.mu.Unlock()

	if r.tracker != nil {
		r.tracker.StartOperation(ctx, len(paths))
		defer r.tracker.FinishOperation(ctx)
	}

	summary := &Summary{Reports: make([]*FileReport, len(paths))}
	errs := make([]error, len(paths))

	var err error
	if r.jobs == 1 {
		err = r.runSync(ctx, paths, passes, opts, summary, errs)
	} else {
		err = r.runAsync(ctx, paths, passes, opts, summary, errs)
	}
	if err != nil {
		return summary, err
	}

	for i, e := range errs {
		if e != nil {
			summary.Failed = append(summary.Failed, paths[i])
		}
	}
	if len(summary.Failed) > 0 {
		return summary, errors.Errorf("%d of %d files failed: %w", len(summary.Failed), len(paths), errors.Join(errs...))
	}
	return summary, nil
}

// 🔄 runSync processes the files in order
func (r *Runner) runSync(ctx context.Context, paths []string, passes []Pass, opts Options, summary *Summary, errs []error) error {
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("run cancelled: %w", err)
		}
		summary.Reports[i], errs[i] = r.processOne(ctx, path, passes, opts)
	}
	return nil
}

// ⚡ runAsync processes up to r.jobs files at once
func (r *Runner) runAsync(ctx context.Context, paths []string, passes []Pass, opts Options, summary *Summary, errs []error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Errorf("run cancelled: %w", err)
			}
			summary.Reports[i], errs[i] = r.processOne(gctx, path, passes, opts)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) processOne(ctx context.Context, path string, passes []Pass, opts Options) (*FileReport, error) {
	report, err := Process(ctx, path, passes, opts)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.processed++
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("file", path).Msg("file failed")
		if r.tracker != nil {
			r.tracker.TrackFile(ctx, path, status.FileInfo{Path: path, Status: status.StatusFailed, Error: err})
		}
		if r.reporter != nil {
			r.reporter.ReportFailure(ctx, path, err)
		}
	} else {
		if r.tracker != nil {
			r.tracker.TrackFile(ctx, path, status.FileInfo{
				Path:     path,
				Status:   report.Status(),
				Checksum: report.ChecksumAfter,
			})
		}
		if r.reporter != nil {
			r.reporter.ReportFile(ctx, report)
		}
	}
	if r.tracker != nil {
		r.tracker.UpdateProgress(ctx, r.processed)
	}
	return report, err
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
