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
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultClient = "linearClient"
	DefaultEnum   = "AgentActivityContentType"

	method = "createAgentActivity"
)

// 🔧 Options configures a Matcher.
type Options struct {
	// Client is the receiver expression the calls are made on.
	Client string
	// Enum is the constant namespace of the new call's type field.
	Enum string
	// Vocabulary maps content-type literals to constant names.
	Vocabulary Vocabulary
}

// DefaultOptions returns the options for the EdgeWorker migration.
func DefaultOptions() Options {
	return Options{
		Client:     DefaultClient,
		Enum:       DefaultEnum,
		Vocabulary: DefaultVocabulary(),
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Client) == "" {
		return errors.New("client is required")
	}
	if !identifierRE.MatchString(o.Enum) {
		return errors.Errorf("enum %q is not an identifier", o.Enum)
	}
	if err := o.Vocabulary.Validate(); err != nil {
		return errors.Errorf("validating vocabulary: %w", err)
	}
	return nil
}

// 🎯 Matcher recognizes the legacy createAgentActivity idioms and rewrites
// them to the two-argument form.
type Matcher struct {
	opts Options

	boundHead  *regexp.Regexp
	bareHead   *regexp.Regexp
	inputHead  *regexp.Regexp
	branchHead *regexp.Regexp
	elseHead   *regexp.Regexp
	elseIfHead *regexp.Regexp
	logHead    *regexp.Regexp
}

// 🏭 NewMatcher compiles the recognizers for the given options.
func NewMatcher(opts Options) (*Matcher, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	call := regexp.QuoteMeta(opts.Client) + `\s*\.\s*` + method + `\s*\(\s*`
	return &Matcher{
		opts:       opts,
		boundHead:  regexp.MustCompile(`\b(?:const|let)\s+([A-Za-z_$][\w$]*)\s*=\s*(await\s+` + call + `)\{`),
		bareHead:   regexp.MustCompile(`\bawait\s+` + call + `\{`),
		inputHead:  regexp.MustCompile(`\b(?:const|let)\s+([A-Za-z_$][\w$]*)\s*=\s*\{`),
		branchHead: regexp.MustCompile(`^if\s*\(\s*([A-Za-z_$][\w$]*)\s*\.\s*success\s*\)\s*\{`),
		elseHead:   regexp.MustCompile(`^else\s*\{`),
		elseIfHead: regexp.MustCompile(`^else\s+if\b`),
		logHead:    regexp.MustCompile(`\bconsole\s*\.\s*log\s*\(`),
	}, nil
}

// Options returns the matcher's options.
func (m *Matcher) Options() Options {
	return m.opts
}

// candidate is a recognizer hit that has not been validated yet.
type candidate struct {
	shape   Shape
	start   int // statement start
	open    int // opening brace of the argument or variable object literal
	await   int // offset of the await keyword, -1 for ShapeInputVariable
	binding string
}

func (m *Matcher) candidates(src string) []candidate {
	var out []candidate
	for _, loc := range m.boundHead.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, candidate{
			shape:   ShapeBoundCall,
			start:   loc[0],
			open:    loc[1] - 1,
			await:   loc[4],
			binding: src[loc[2]:loc[3]],
		})
	}
	for _, loc := range m.bareHead.FindAllStringIndex(src, -1) {
		out = append(out, candidate{
			shape: ShapeBareCall,
			start: loc[0],
			open:  loc[1] - 1,
			await: loc[0],
		})
	}
	for _, loc := range m.inputHead.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, candidate{
			shape:   ShapeInputVariable,
			start:   loc[0],
			open:    loc[1] - 1,
			await:   -1,
			binding: src[loc[2]:loc[3]],
		})
	}
	// heads inside comments, strings and template literals are not calls
	atoms := atomSpans(src)
	live := out[:0]
	for _, c := range out {
		if !inSpans(atoms, c.start) {
			live = append(live, c)
		}
	}
	out = live

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].start < out[j].start
	})
	return out
}

// 🔍 Scan finds every idiom in src, in source order. Candidates that cannot
// be rewritten safely are reported as Unmatched instead.
func (m *Matcher) Scan(ctx context.Context, src string) *Result {
	logger := zerolog.Ctx(ctx)
	result := &Result{}

	// await offsets already owned by a bound candidate, so the bare
	// recognizer does not pick the same call up again
	claimed := map[int]bool{}
	cursor := 0

	for _, c := range m.candidates(src) {
		if c.start < cursor {
			continue
		}
		if c.shape == ShapeBareCall && claimed[c.await] {
			continue
		}
		if c.shape == ShapeBoundCall {
			claimed[c.await] = true
		}

		rec, skip := m.run(ctx, src, c)
		switch {
		case rec != nil:
			logger.Debug().
				Str("shape", rec.Shape.String()).
				Int("line", rec.Line).
				Str("session", rec.SessionID).
				Str("type", rec.ContentType).
				Msg("matched idiom")
			result.Records = append(result.Records, *rec)
			cursor = rec.End
		case skip != nil:
			logger.Debug().
				Str("shape", skip.Shape.String()).
				Int("line", skip.Line).
				Str("reason", skip.Reason).
				Msg("unmatched idiom")
			result.Unmatched = append(result.Unmatched, *skip)
		}
	}
	return result
}

// machine is the state of one idiom being read.
type machine struct {
	m   *Matcher
	src string
	c   candidate
	rec *Record
	pos int

	successOpen int
}

func (mc *machine) fail(format string, args ...any) *Unmatched {
	return &Unmatched{
		Shape:  mc.c.shape,
		Offset: mc.c.start,
		Line:   lineOf(mc.src, mc.c.start),
		Reason: fmt.Sprintf(format, args...),
	}
}

// run drives one candidate through the state machine. It returns a record,
// an unmatched report, or neither when the candidate is not an idiom at all.
func (m *Matcher) run(ctx context.Context, src string, c candidate) (*Record, *Unmatched) {
	logger := zerolog.Ctx(ctx)
	mc := &machine{
		m:   m,
		src: src,
		c:   c,
		rec: &Record{
			Shape:   c.shape,
			Start:   c.start,
			Line:    lineOf(src, c.start),
			Indent:  lineIndent(src, c.start),
			Newline: lineEnding(src, c.start),
			Binding: c.binding,
			Trace:   []State{SeekingCall},
		},
	}

	state := ReadingFields
	for {
		mc.rec.Trace = append(mc.rec.Trace, state)
		logger.Trace().Int("line", mc.rec.Line).Str("state", state.String()).Msg("idiom state")

		var (
			next State
			skip *Unmatched
			drop bool
		)
		switch state {
		case ReadingFields:
			next, skip, drop = mc.readFields()
		case AwaitingBranch:
			next, skip = mc.awaitBranch()
		case ReadingSuccessBlock:
			next, skip = mc.readSuccessBlock()
		case ReadingFailureBlock:
			next, skip = mc.readFailureBlock()
		case Splicing:
			mc.rec.End = mc.pos
			return mc.rec, nil
		}
		if drop {
			return nil, nil
		}
		if skip != nil {
			return nil, skip
		}
		state = next
	}
}

// readFields parses the argument object (or the input variable and the call
// it feeds) and fills in session, type and body.
func (mc *machine) readFields() (State, *Unmatched, bool) {
	src, c := mc.src, mc.c

	obj, err := parseObject(src, c.open)
	if err != nil {
		if c.shape == ShapeInputVariable {
			return 0, nil, true
		}
		return 0, mc.fail("reading call argument: %v", err), false
	}
	if c.shape == ShapeInputVariable {
		if _, ok := obj.get("agentSessionId"); !ok {
			// an ordinary object literal
			return 0, nil, true
		}
		mc.rec.Variable = c.binding
		mc.rec.Binding = ""
	}

	if skip := mc.readArgument(obj); skip != nil {
		return 0, skip, false
	}

	pos := skipSpace(src, obj.close+1)
	switch c.shape {
	case ShapeBoundCall, ShapeBareCall:
		if pos >= len(src) || src[pos] != ')' {
			return 0, mc.fail("call takes more than one argument"), false
		}
		pos++
	case ShapeInputVariable:
		if pos >= len(src) || src[pos] != ';' {
			return 0, mc.fail("object literal is not a standalone declaration"), false
		}
		pos = skipSpace(src, pos+1)
		callRE := regexp.MustCompile(`^(?:const|let)\s+([A-Za-z_$][\w$]*)\s*=\s*await\s+` +
			regexp.QuoteMeta(mc.m.opts.Client) + `\s*\.\s*` + method + `\s*\(\s*` +
			regexp.QuoteMeta(c.binding) + `\s*\)`)
		loc := callRE.FindStringSubmatchIndex(src[pos:])
		if loc == nil {
			return 0, mc.fail("%s is not passed straight to %s", c.binding, method), false
		}
		mc.rec.Binding = src[pos+loc[2] : pos+loc[3]]
		pos += loc[1]
	}
	semi := skipInline(src, pos)
	if !statementEnds(src, semi) {
		return 0, mc.fail("call is part of a larger expression"), false
	}
	if semi < len(src) && src[semi] == ';' {
		pos = semi + 1
	}
	mc.pos = pos

	if c.shape == ShapeBareCall {
		return Splicing, nil, false
	}
	return AwaitingBranch, nil, false
}

func (mc *machine) readArgument(obj *objectLiteral) *Unmatched {
	src, opts := mc.src, mc.m.opts

	if !obj.hasExactly("agentSessionId", "content") {
		return mc.fail("argument must hold exactly agentSessionId and content")
	}
	session, _ := obj.get("agentSessionId")
	content, _ := obj.get("content")

	if strings.TrimSpace(session.value) == "" {
		return mc.fail("empty agentSessionId")
	}
	mc.rec.SessionID = session.value

	if !strings.HasPrefix(content.value, "{") {
		return mc.fail("content is not an object literal")
	}
	inner, err := parseObject(src, content.valueAt)
	if err != nil {
		return mc.fail("reading content: %v", err)
	}
	if !inner.hasExactly("type", "body") {
		return mc.fail("content must hold exactly type and body")
	}
	typ, _ := inner.get("type")
	body, _ := inner.get("body")

	contentType, ok := stringLiteral(typ.value)
	if !ok {
		return mc.fail("content type %s is not a string literal", typ.value)
	}
	constant, ok := opts.Vocabulary.Constant(contentType)
	if !ok {
		return mc.fail("unknown content type %q", contentType)
	}
	mc.rec.ContentType = contentType
	mc.rec.Constant = constant

	// one level of indentation, taken from the first property line
	mc.rec.Unit = "\t"
	if first := lineIndent(src, session.keyAt); len(first) > len(mc.rec.Indent) && strings.HasPrefix(first, mc.rec.Indent) {
		mc.rec.Unit = first[len(mc.rec.Indent):]
	}

	value := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(body.value), ","))
	mc.rec.Body = reindent(value, lineIndent(src, body.keyAt), mc.rec.Indent+mc.rec.Unit)
	return nil
}

func (mc *machine) awaitBranch() (State, *Unmatched) {
	pos := skipSpace(mc.src, mc.pos)
	loc := mc.m.branchHead.FindStringSubmatchIndex(mc.src[pos:])
	if loc == nil {
		return 0, mc.fail("%s is bound but not followed by a success branch", mc.rec.Binding)
	}
	if name := mc.src[pos+loc[2] : pos+loc[3]]; name != mc.rec.Binding {
		return 0, mc.fail("branch tests %s.success instead of %s.success", name, mc.rec.Binding)
	}
	mc.rec.Branch = &Branch{Start: pos}
	mc.successOpen = pos + loc[1] - 1
	return ReadingSuccessBlock, nil
}

func (mc *machine) readSuccessBlock() (State, *Unmatched) {
	src := mc.src
	end, err := matchClose(src, mc.successOpen)
	if err != nil {
		return 0, mc.fail("reading success block: %v", err)
	}

	inner := src[mc.successOpen+1 : end]
	if loc := mc.m.logHead.FindStringIndex(inner); loc != nil {
		logStart := mc.successOpen + 1 + loc[0]
		logClose, err := matchClose(src, mc.successOpen+1+loc[1]-1)
		if err != nil {
			return 0, mc.fail("reading success log: %v", err)
		}
		logEnd := logClose + 1
		if semi := skipInline(src, logEnd); semi < end && src[semi] == ';' {
			logEnd = semi + 1
		}
		rest := src[mc.successOpen+1:logStart] + src[logEnd:end]
		if strings.TrimSpace(rest) != "" {
			return 0, mc.fail("success branch holds more than a log statement")
		}
		mc.rec.SuccessLog = reindent(src[logStart:logEnd], lineIndent(src, logStart), mc.rec.Indent)
	} else if strings.TrimSpace(inner) != "" {
		return 0, mc.fail("success branch holds statements but no log")
	}

	mc.pos = end + 1
	mc.rec.Branch.End = mc.pos

	next := skipSpace(src, mc.pos)
	tail := src[next:]
	switch {
	case mc.m.elseIfHead.MatchString(tail):
		return 0, mc.fail("else-if chain after success branch")
	case mc.m.elseHead.MatchString(tail):
		mc.pos = next
		return ReadingFailureBlock, nil
	}
	return Splicing, nil
}

func (mc *machine) readFailureBlock() (State, *Unmatched) {
	loc := mc.m.elseHead.FindStringIndex(mc.src[mc.pos:])
	open := mc.pos + loc[1] - 1
	end, err := matchClose(mc.src, open)
	if err != nil {
		return 0, mc.fail("reading failure block: %v", err)
	}
	mc.pos = end + 1
	mc.rec.Branch.End = mc.pos
	mc.rec.Branch.HasElse = true
	return Splicing, nil
}

// statementEnds reports whether the call closed just before i is a whole
// statement: a semicolon, a line break, a closing brace, a comment or the
// end of the text follows it.
func statementEnds(src string, i int) bool {
	if i >= len(src) {
		return true
	}
	switch src[i] {
	case ';', '\r', '\n', '}':
		return true
	}
	return strings.HasPrefix(src[i:], "//") || strings.HasPrefix(src[i:], "/*")
}

// skipInline skips spaces and tabs but not line breaks.
func skipInline(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i
}
