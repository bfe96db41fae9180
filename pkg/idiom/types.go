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
	"fmt"
)

// 🧩 Shape identifies which surface syntax an idiom was written in.
type Shape int

const (
	// ShapeBoundCall is `const result = await c.createAgentActivity({...})` plus a success branch.
	ShapeBoundCall Shape = iota
	// ShapeBareCall is `await c.createAgentActivity({...});` with no branch.
	ShapeBareCall
	// ShapeInputVariable is `const activityInput = {...}` passed to a bound call plus a success branch.
	ShapeInputVariable
)

// Shapes lists every shape in a stable order.
var Shapes = []Shape{ShapeBoundCall, ShapeBareCall, ShapeInputVariable}

func (s Shape) String() string {
	switch s {
	case ShapeBoundCall:
		return "bound-call"
	case ShapeBareCall:
		return "bare-call"
	case ShapeInputVariable:
		return "input-variable"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// 🚦 State is a step of the per-idiom state machine.
type State int

const (
	SeekingCall State = iota
	ReadingFields
	AwaitingBranch
	ReadingSuccessBlock
	ReadingFailureBlock
	Splicing
)

func (s State) String() string {
	switch s {
	case SeekingCall:
		return "seeking-call"
	case ReadingFields:
		return "reading-fields"
	case AwaitingBranch:
		return "awaiting-branch"
	case ReadingSuccessBlock:
		return "reading-success-block"
	case ReadingFailureBlock:
		return "reading-failure-block"
	case Splicing:
		return "splicing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Branch is the span of an `if (result.success) {...} else {...}` statement.
type Branch struct {
	Start   int
	End     int
	HasElse bool
}

// 📄 Record is one recognized idiom, ready to be spliced.
type Record struct {
	Shape Shape

	// Start and End delimit the replaced text. Start is the first byte of the
	// statement, so the indentation before it is left in place.
	Start int
	End   int
	Line  int

	Indent  string // indentation of the opening line
	Unit    string // one level of indentation inside the call
	Newline string // line ending of the opening line

	Binding     string // name of the bound result, empty for ShapeBareCall
	Variable    string // name of the input variable for ShapeInputVariable
	SessionID   string
	ContentType string
	Constant    string
	Body        string // already re-indented for the new call
	SuccessLog  string // already re-indented to Indent, empty if none

	Branch *Branch
	Trace  []State
}

// ⚠️ Unmatched is a candidate that looked like an idiom but was left alone.
type Unmatched struct {
	Shape  Shape
	Offset int
	Line   int
	Reason string
}

func (u Unmatched) String() string {
	return fmt.Sprintf("line %d (%s): %s", u.Line, u.Shape, u.Reason)
}

// 📊 Result summarizes a scan or rewrite of one text.
type Result struct {
	Records   []Record
	Unmatched []Unmatched
}

// Count returns the number of records of the given shape.
func (r *Result) Count(shape Shape) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Shape == shape {
			n++
		}
	}
	return n
}

// Total returns the number of records.
func (r *Result) Total() int {
	return len(r.Records)
}
