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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(l ...string) string {
	return strings.Join(l, "\n")
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.TraceLevel)
	return logger.WithContext(context.Background())
}

func newTestMatcher(t *testing.T) *Matcher {
	m, err := NewMatcher(DefaultOptions())
	require.NoError(t, err)
	return m
}

var boundCallSource = lines(
	"\t\tconst result = await linearClient.createAgentActivity({",
	"\t\t\tagentSessionId: parentSessionId,",
	"\t\t\tcontent: {",
	"\t\t\t\ttype: \"thought\",",
	"\t\t\t\tbody: resultThought,",
	"\t\t\t},",
	"\t\t});",
	"\t\tif (result.success) {",
	"\t\t\tconsole.log(\"Posted thought\");",
	"\t\t} else {",
	"\t\t\tconsole.error(\"Failed to post thought:\", result);",
	"\t\t}",
	"\t\treturn;",
)

var inputVariableSource = lines(
	"\t\t\tconst activityInput = {",
	"\t\t\t\tagentSessionId: linearAgentActivitySessionId,",
	"\t\t\t\tcontent: {",
	"\t\t\t\t\ttype: \"thought\",",
	"\t\t\t\t\tbody: `Entering '${selectedPromptType}' mode because of the '${triggerLabel}' label. I'll follow the ${selectedPromptType} process...`,",
	"\t\t\t\t},",
	"\t\t\t};",
	"",
	"\t\t\tconst result = await linearClient.createAgentActivity(activityInput);",
	"\t\t\tif (result.success) {",
	"\t\t\t\tconsole.log(",
	"\t\t\t\t\t`[EdgeWorker] Posted system prompt selection thought for session ${linearAgentActivitySessionId} (${selectedPromptType} mode)`,",
	"\t\t\t\t);",
	"\t\t\t} else {",
	"\t\t\t\tconsole.error(",
	"\t\t\t\t\t`[EdgeWorker] Failed to post system prompt selection thought:`,",
	"\t\t\t\t\tresult,",
	"\t\t\t\t);",
	"\t\t\t}",
)

func TestMatcher_Rewrite(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		want      string
		wantCount int
	}{
		{
			name: "bound_call_with_branch",
			src:  boundCallSource,
			want: lines(
				"\t\tawait linearClient.createAgentActivity(parentSessionId, {",
				"\t\t\ttype: AgentActivityContentType.Thought,",
				"\t\t\tbody: resultThought,",
				"\t\t});",
				"\t\tconsole.log(\"Posted thought\");",
				"\t\treturn;",
			),
			wantCount: 1,
		},
		{
			name: "input_variable_with_branch",
			src:  inputVariableSource,
			want: lines(
				"\t\t\tawait linearClient.createAgentActivity(linearAgentActivitySessionId, {",
				"\t\t\t\ttype: AgentActivityContentType.Thought,",
				"\t\t\t\tbody: `Entering '${selectedPromptType}' mode because of the '${triggerLabel}' label. I'll follow the ${selectedPromptType} process...`,",
				"\t\t\t});",
				"\t\t\tconsole.log(",
				"\t\t\t\t`[EdgeWorker] Posted system prompt selection thought for session ${linearAgentActivitySessionId} (${selectedPromptType} mode)`,",
				"\t\t\t);",
			),
			wantCount: 1,
		},
		{
			name: "bare_call",
			src: lines(
				"\t\t\t\tawait linearClient.createAgentActivity({",
				"\t\t\t\t\tagentSessionId: session.linearAgentActivitySessionId,",
				"\t\t\t\t\tcontent: {",
				"\t\t\t\t\t\ttype: \"response\",",
				"\t\t\t\t\t\tbody: `**Repository Removed**\\n\\nThis repository (\\`${repo.name}\\`) was removed.`,",
				"\t\t\t\t\t},",
				"\t\t\t\t});",
			),
			want: lines(
				"\t\t\t\tawait linearClient.createAgentActivity(session.linearAgentActivitySessionId, {",
				"\t\t\t\t\ttype: AgentActivityContentType.Response,",
				"\t\t\t\t\tbody: `**Repository Removed**\\n\\nThis repository (\\`${repo.name}\\`) was removed.`,",
				"\t\t\t\t});",
			),
			wantCount: 1,
		},
		{
			name: "body_with_embedded_braces",
			src: lines(
				"\tawait linearClient.createAgentActivity({",
				"\t\tagentSessionId: id,",
				"\t\tcontent: {",
				"\t\t\ttype: \"thought\",",
				"\t\t\tbody: `state ${JSON.stringify({ a: { b: 1 } })} done`,",
				"\t\t},",
				"\t});",
			),
			want: lines(
				"\tawait linearClient.createAgentActivity(id, {",
				"\t\ttype: AgentActivityContentType.Thought,",
				"\t\tbody: `state ${JSON.stringify({ a: { b: 1 } })} done`,",
				"\t});",
			),
			wantCount: 1,
		},
		{
			name: "multi_line_body_is_reindented",
			src: lines(
				"\tawait linearClient.createAgentActivity({",
				"\t\tagentSessionId: id,",
				"\t\tcontent: {",
				"\t\t\ttype: \"response\",",
				"\t\t\tbody: [",
				"\t\t\t\t\"a\",",
				"\t\t\t\t\"b\",",
				"\t\t\t].join(\"\\n\"),",
				"\t\t},",
				"\t});",
			),
			want: lines(
				"\tawait linearClient.createAgentActivity(id, {",
				"\t\ttype: AgentActivityContentType.Response,",
				"\t\tbody: [",
				"\t\t\t\"a\",",
				"\t\t\t\"b\",",
				"\t\t].join(\"\\n\"),",
				"\t});",
			),
			wantCount: 1,
		},
		{
			name: "template_literal_lines_keep_their_indentation",
			src: lines(
				"\tawait linearClient.createAgentActivity({",
				"\t\tagentSessionId: id,",
				"\t\tcontent: {",
				"\t\t\ttype: \"thought\",",
				"\t\t\tbody: `first",
				"\t\t\tsecond`,",
				"\t\t},",
				"\t});",
			),
			want: lines(
				"\tawait linearClient.createAgentActivity(id, {",
				"\t\ttype: AgentActivityContentType.Thought,",
				"\t\tbody: `first",
				"\t\t\tsecond`,",
				"\t});",
			),
			wantCount: 1,
		},
		{
			name: "space_indentation_is_preserved",
			src: lines(
				"    const result = await linearClient.createAgentActivity({",
				"      agentSessionId: childSessionId,",
				"      content: { type: \"thought\", body: feedbackThought },",
				"    });",
				"    if (result.success) {",
				"      console.log(`Posted feedback receipt`);",
				"    } else {",
				"      console.error(`Failed to post feedback receipt thought`, result);",
				"    }",
			),
			want: lines(
				"    await linearClient.createAgentActivity(childSessionId, {",
				"      type: AgentActivityContentType.Thought,",
				"      body: feedbackThought,",
				"    });",
				"    console.log(`Posted feedback receipt`);",
			),
			wantCount: 1,
		},
		{
			name: "success_branch_without_else",
			src: lines(
				"\tconst res = await linearClient.createAgentActivity({",
				"\t\tagentSessionId: id,",
				"\t\tcontent: {",
				"\t\t\ttype: \"action\",",
				"\t\t\tbody: text,",
				"\t\t},",
				"\t});",
				"\tif (res.success) {",
				"\t\tconsole.log(\"Posted action\");",
				"\t}",
				"\tdone();",
			),
			want: lines(
				"\tawait linearClient.createAgentActivity(id, {",
				"\t\ttype: AgentActivityContentType.Action,",
				"\t\tbody: text,",
				"\t});",
				"\tconsole.log(\"Posted action\");",
				"\tdone();",
			),
			wantCount: 1,
		},
		{
			name: "empty_success_branch_drops_log",
			src: lines(
				"\tconst result = await linearClient.createAgentActivity({",
				"\t\tagentSessionId: id,",
				"\t\tcontent: {",
				"\t\t\ttype: \"error\",",
				"\t\t\tbody: message,",
				"\t\t},",
				"\t});",
				"\tif (result.success) {",
				"\t} else {",
				"\t\tconsole.error(result);",
				"\t}",
			),
			want: lines(
				"\tawait linearClient.createAgentActivity(id, {",
				"\t\ttype: AgentActivityContentType.Error,",
				"\t\tbody: message,",
				"\t});",
			),
			wantCount: 1,
		},
		{
			name: "already_converted_is_untouched",
			src: lines(
				"\tawait linearClient.createAgentActivity(id, {",
				"\t\ttype: AgentActivityContentType.Thought,",
				"\t\tbody: text,",
				"\t});",
			),
			want: lines(
				"\tawait linearClient.createAgentActivity(id, {",
				"\t\ttype: AgentActivityContentType.Thought,",
				"\t\tbody: text,",
				"\t});",
			),
			wantCount: 0,
		},
		{
			name:      "unrelated_object_literals_are_ignored",
			src:       "const config = { a: 1, b: { c: 2 } };\nconst x = { agent: y };",
			want:      "const config = { a: 1, b: { c: 2 } };\nconst x = { agent: y };",
			wantCount: 0,
		},
		{
			name:      "empty_source",
			src:       "",
			want:      "",
			wantCount: 0,
		},
		{
			name: "trailing_comment_without_semicolon",
			src:  "await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"thought\", body: text } }) // posted",
			want: lines(
				"await linearClient.createAgentActivity(id, {",
				"\ttype: AgentActivityContentType.Thought,",
				"\tbody: text,",
				"}); // posted",
			),
			wantCount: 1,
		},
		{
			name:      "line_comment_is_skipped",
			src:       "\t\t// await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"thought\", body: msg } });",
			want:      "\t\t// await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"thought\", body: msg } });",
			wantCount: 0,
		},
		{
			name: "block_comment_is_skipped",
			src: lines(
				"/*",
				"await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"thought\", body: msg } });",
				"*/",
			),
			want: lines(
				"/*",
				"await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"thought\", body: msg } });",
				"*/",
			),
			wantCount: 0,
		},
		{
			name:      "template_literal_is_skipped",
			src:       "const doc = `await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"thought\", body: msg } });`;",
			want:      "const doc = `await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"thought\", body: msg } });`;",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			m := newTestMatcher(t)

			got, result := m.Rewrite(ctx, tt.src)
			require.NotNil(t, result)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCount, result.Total())
			assert.Empty(t, result.Unmatched)

			again, second := m.Rewrite(ctx, got)
			assert.Equal(t, got, again, "rewrite must be idempotent")
			assert.Zero(t, second.Total())
		})
	}
}

func TestMatcher_Unmatched(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantShape  Shape
		wantReason string
	}{
		{
			name: "unknown_content_type",
			src: lines(
				"await linearClient.createAgentActivity({",
				"\tagentSessionId: id,",
				"\tcontent: { type: \"musing\", body: text },",
				"});",
			),
			wantShape:  ShapeBareCall,
			wantReason: `unknown content type "musing"`,
		},
		{
			name: "non_literal_content_type",
			src: lines(
				"await linearClient.createAgentActivity({",
				"\tagentSessionId: id,",
				"\tcontent: { type: kind, body: text },",
				"});",
			),
			wantShape:  ShapeBareCall,
			wantReason: "not a string literal",
		},
		{
			name: "bound_without_branch",
			src: lines(
				"const result = await linearClient.createAgentActivity({",
				"\tagentSessionId: id,",
				"\tcontent: { type: \"thought\", body: text },",
				"});",
				"return result;",
			),
			wantShape:  ShapeBoundCall,
			wantReason: "not followed by a success branch",
		},
		{
			name: "branch_on_other_variable",
			src: lines(
				"const result = await linearClient.createAgentActivity({",
				"\tagentSessionId: id,",
				"\tcontent: { type: \"thought\", body: text },",
				"});",
				"if (other.success) {",
				"\tconsole.log(\"x\");",
				"}",
			),
			wantShape:  ShapeBoundCall,
			wantReason: "branch tests other.success",
		},
		{
			name: "else_if_chain",
			src: lines(
				"const result = await linearClient.createAgentActivity({",
				"\tagentSessionId: id,",
				"\tcontent: { type: \"thought\", body: text },",
				"});",
				"if (result.success) {",
				"\tconsole.log(\"x\");",
				"} else if (retry) {",
				"\tretryLater();",
				"}",
			),
			wantShape:  ShapeBoundCall,
			wantReason: "else-if chain",
		},
		{
			name: "success_branch_with_extra_statements",
			src: lines(
				"const result = await linearClient.createAgentActivity({",
				"\tagentSessionId: id,",
				"\tcontent: { type: \"thought\", body: text },",
				"});",
				"if (result.success) {",
				"\tconsole.log(\"x\");",
				"\tmarkPosted(id);",
				"}",
			),
			wantShape:  ShapeBoundCall,
			wantReason: "more than a log statement",
		},
		{
			name: "extra_argument_field",
			src: lines(
				"await linearClient.createAgentActivity({",
				"\tagentSessionId: id,",
				"\tephemeral: true,",
				"\tcontent: { type: \"thought\", body: text },",
				"});",
			),
			wantShape:  ShapeBareCall,
			wantReason: "exactly agentSessionId and content",
		},
		{
			name: "input_variable_not_passed_to_call",
			src: lines(
				"const activityInput = {",
				"\tagentSessionId: id,",
				"\tcontent: { type: \"thought\", body: text },",
				"};",
				"queue.push(activityInput);",
			),
			wantShape:  ShapeInputVariable,
			wantReason: "not passed straight to createAgentActivity",
		},
		{
			name: "unterminated_call",
			src: lines(
				"await linearClient.createAgentActivity({",
				"\tagentSessionId: id,",
				"\tcontent: { type: \"thought\", body: `oops",
			),
			wantShape:  ShapeBareCall,
			wantReason: "reading call argument",
		},
		{
			name:       "call_inside_expression",
			src:        "(await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"thought\", body: text } })).success;",
			wantShape:  ShapeBareCall,
			wantReason: "part of a larger expression",
		},
		{
			name:       "call_with_chained_catch",
			src:        "await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"thought\", body: text } }).catch(console.error);",
			wantShape:  ShapeBareCall,
			wantReason: "part of a larger expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			m := newTestMatcher(t)

			got, result := m.Rewrite(ctx, tt.src)
			assert.Equal(t, tt.src, got, "unmatched idioms must be left alone")
			assert.Zero(t, result.Total())
			require.Len(t, result.Unmatched, 1)
			assert.Equal(t, tt.wantShape, result.Unmatched[0].Shape)
			assert.Contains(t, result.Unmatched[0].Reason, tt.wantReason)
			assert.Equal(t, 1, result.Unmatched[0].Line)
		})
	}
}

func TestMatcher_ScanRecords(t *testing.T) {
	ctx := testContext(t)
	m := newTestMatcher(t)

	src := boundCallSource + "\n" + inputVariableSource

	result := m.Scan(ctx, src)
	require.Empty(t, result.Unmatched)

	type summary struct {
		Shape       Shape
		Line        int
		Binding     string
		Variable    string
		SessionID   string
		ContentType string
		Constant    string
		HasElse     bool
		Trace       []State
	}

	var got []summary
	for _, rec := range result.Records {
		require.NotNil(t, rec.Branch)
		got = append(got, summary{
			Shape:       rec.Shape,
			Line:        rec.Line,
			Binding:     rec.Binding,
			Variable:    rec.Variable,
			SessionID:   rec.SessionID,
			ContentType: rec.ContentType,
			Constant:    rec.Constant,
			HasElse:     rec.Branch.HasElse,
			Trace:       rec.Trace,
		})
	}

	fullTrace := []State{SeekingCall, ReadingFields, AwaitingBranch, ReadingSuccessBlock, ReadingFailureBlock, Splicing}
	want := []summary{
		{
			Shape:       ShapeBoundCall,
			Line:        1,
			Binding:     "result",
			SessionID:   "parentSessionId",
			ContentType: "thought",
			Constant:    "Thought",
			HasElse:     true,
			Trace:       fullTrace,
		},
		{
			Shape:       ShapeInputVariable,
			Line:        14,
			Binding:     "result",
			Variable:    "activityInput",
			SessionID:   "linearAgentActivitySessionId",
			ContentType: "thought",
			Constant:    "Thought",
			HasElse:     true,
			Trace:       fullTrace,
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, result.Count(ShapeBoundCall))
	assert.Equal(t, 0, result.Count(ShapeBareCall))
	assert.Equal(t, 1, result.Count(ShapeInputVariable))
}

func TestMatcher_BareTrace(t *testing.T) {
	m := newTestMatcher(t)
	result := m.Scan(testContext(t), "await linearClient.createAgentActivity({ agentSessionId: id, content: { type: \"prompt\", body: b } });")
	require.Len(t, result.Records, 1)
	assert.Equal(t, []State{SeekingCall, ReadingFields, Splicing}, result.Records[0].Trace)
	assert.Nil(t, result.Records[0].Branch)
	assert.Equal(t, "\t", result.Records[0].Unit, "single-line calls fall back to a tab")
}

func TestMatcher_CRLF(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "bound_call",
			src:  boundCallSource,
			want: lines(
				"\t\tawait linearClient.createAgentActivity(parentSessionId, {",
				"\t\t\ttype: AgentActivityContentType.Thought,",
				"\t\t\tbody: resultThought,",
				"\t\t});",
				"\t\tconsole.log(\"Posted thought\");",
				"\t\treturn;",
			),
		},
		{
			name: "bare_call",
			src: lines(
				"\tawait linearClient.createAgentActivity({",
				"\t\tagentSessionId: id,",
				"\t\tcontent: { type: \"error\", body: msg },",
				"\t});",
			),
			want: lines(
				"\tawait linearClient.createAgentActivity(id, {",
				"\t\ttype: AgentActivityContentType.Error,",
				"\t\tbody: msg,",
				"\t});",
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := strings.ReplaceAll(tt.src, "\n", "\r\n")

			got, result := newTestMatcher(t).Rewrite(testContext(t), src)
			require.Equal(t, 1, result.Total())
			assert.Equal(t, strings.ReplaceAll(tt.want, "\n", "\r\n"), got)
			assert.Equal(t, strings.Count(got, "\n"), strings.Count(got, "\r\n"), "every line break must stay CRLF")
		})
	}
}

func TestMatcher_CustomOptions(t *testing.T) {
	opts := Options{
		Client:     "this.client",
		Enum:       "ActivityType",
		Vocabulary: Vocabulary{"note": "Thought"},
	}
	m, err := NewMatcher(opts)
	require.NoError(t, err)

	src := lines(
		"await this.client.createAgentActivity({",
		"  agentSessionId: s,",
		"  content: { type: 'note', body: b },",
		"});",
	)
	got, result := m.Rewrite(testContext(t), src)
	require.Equal(t, 1, result.Total())
	assert.Equal(t, lines(
		"await this.client.createAgentActivity(s, {",
		"  type: ActivityType.Thought,",
		"  body: b,",
		"});",
	), got)

	// the default client is not matched any more
	_, result = m.Rewrite(testContext(t), boundCallSource)
	assert.Zero(t, result.Total())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantError string
	}{
		{name: "defaults", opts: DefaultOptions()},
		{name: "missing_client", opts: Options{Enum: "E", Vocabulary: DefaultVocabulary()}, wantError: "client is required"},
		{name: "bad_enum", opts: Options{Client: "c", Enum: "a.b", Vocabulary: DefaultVocabulary()}, wantError: "is not an identifier"},
		{name: "empty_vocabulary", opts: Options{Client: "c", Enum: "E"}, wantError: "vocabulary is empty"},
		{name: "bad_constant", opts: Options{Client: "c", Enum: "E", Vocabulary: Vocabulary{"two words": "Two words"}}, wantError: "invalid constant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatcher(tt.opts)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}
