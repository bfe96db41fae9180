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
	"strings"

	"github.com/pkg/diff"
	"gitlab.com/tozd/go/errors"
)

// UnifiedDiff renders the change to path as a unified diff.
func UnifiedDiff(path, before, after string) (string, error) {
	var buf strings.Builder
	if err := diff.Text("a/"+path, "b/"+path, before, after, &buf); err != nil {
		return "", errors.Errorf("diffing %s: %w", path, err)
	}
	return buf.String(), nil
}
