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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edgerewrite/pkg/status"
)

// DefaultExcludes are never rewritten, whatever the targets say.
var DefaultExcludes = []string{"**/node_modules/**", "**/*" + status.BackupSuffix}

// 🔍 ExpandTargets resolves file paths and doublestar globs to a sorted,
// de-duplicated list of regular files. A plain path must exist; a glob that
// matches nothing is an error, so typos do not pass silently.
func ExpandTargets(patterns []string, excludes []string) ([]string, error) {
	excludes = append(append([]string(nil), DefaultExcludes...), excludes...)
	for _, ex := range excludes {
		if !doublestar.ValidatePattern(filepath.ToSlash(ex)) {
			return nil, errors.Errorf("invalid exclude pattern %q", ex)
		}
	}

	seen := map[string]bool{}
	var out []string

	for _, pattern := range patterns {
		var matches []string
		if hasMeta(pattern) {
			m, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, errors.Errorf("expanding %q: %w", pattern, err)
			}
			if len(m) == 0 {
				return nil, errors.Errorf("no files match %q", pattern)
			}
			matches = m
		} else {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, errors.Errorf("target %q: %w", pattern, err)
			}
			if info.IsDir() {
				return nil, errors.Errorf("target %q is a directory; use a glob such as %s", pattern, filepath.Join(pattern, "**", "*.ts"))
			}
			matches = []string{pattern}
		}

		for _, m := range matches {
			m = filepath.Clean(m)
			if seen[m] || excluded(m, excludes) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}

	sort.Strings(out)
	return out, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func excluded(path string, excludes []string) bool {
	slashed := filepath.ToSlash(path)
	for _, ex := range excludes {
		if ok, _ := doublestar.Match(filepath.ToSlash(ex), slashed); ok {
			return true
		}
	}
	return false
}
