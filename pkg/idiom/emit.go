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

package idiom

import (
	"context"
	"fmt"
	"strings"
)

// Emit renders the two-argument call for a record, followed by the
// preserved success log. The first line carries no indentation because the
// original indentation before Record.Start stays in the output. Lines end
// with Record.Newline, "\n" when unset.
func (m *Matcher) Emit(rec Record) string {
	var b strings.Builder
	inner := rec.Indent + rec.Unit
	nl := rec.Newline
	if nl == "" {
		nl = "\n"
	}

	fmt.Fprintf(&b, "await %s.%s(%s, {%s", m.opts.Client, method, rec.SessionID, nl)
	fmt.Fprintf(&b, "%stype: %s.%s,%s", inner, m.opts.Enum, rec.Constant, nl)
	fmt.Fprintf(&b, "%sbody: %s,%s", inner, rec.Body, nl)
	fmt.Fprintf(&b, "%s});", rec.Indent)
	if rec.SuccessLog != "" {
		fmt.Fprintf(&b, "%s%s%s", nl, rec.Indent, rec.SuccessLog)
	}
	return b.String()
}

// ✏️ Rewrite replaces every idiom in src with its two-argument form.
// Unmatched candidates are left exactly as they were.
func (m *Matcher) Rewrite(ctx context.Context, src string) (string, *Result) {
	result := m.Scan(ctx, src)
	if len(result.Records) == 0 {
		return src, result
	}

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, rec := range result.Records {
		b.WriteString(src[last:rec.Start])
		b.WriteString(m.Emit(rec))
		last = rec.End
	}
	b.WriteString(src[last:])
	return b.String(), result
}
