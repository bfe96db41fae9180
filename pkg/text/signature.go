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

package text

import (
	"regexp"
	"strings"
)

// closeBrace tolerates a trailing comma before the brace.
const closeBrace = `\s*,?\s*\}`

// filterEq matches `({ filter: { <field>: { id: { eq: X } } } })` and captures X.
func filterEq(field string) string {
	return `\(\s*\{\s*filter:\s*\{\s*` + field + `:\s*\{\s*id:\s*\{\s*eq:\s*([^{}]+?)` +
		strings.Repeat(closeBrace, 4) + `\s*\)`
}

// 🖊️ SignatureRules returns the method-signature rewrites of the client
// migration. Each rule is global and independent of the others.
//
//	client.fetchComments({ filter: { issue: { id: { eq: X } } } })  ->  client.fetchComments(X)
//	client.fetchComment({ id: Y })                                   ->  client.fetchComment(Y)
//	client.fetchWorkflowStates({ filter: { team: { id: { eq: T } } } }) -> client.fetchWorkflowStates(T)
//	x.parent                                                         ->  x.parentId
func SignatureRules(client string) []RegexRule {
	c := regexp.QuoteMeta(client)
	if client != "" && isWordByte(client[0]) {
		c = `\b` + c
	}
	return []RegexRule{
		{
			Name:    "fetch-comments",
			Pattern: c + `\s*\.\s*fetchComments` + filterEq("issue"),
			Replace: client + ".fetchComments(${1})",
		},
		{
			Name:    "fetch-comment",
			Pattern: c + `\s*\.\s*fetchComment\(\s*\{\s*id:\s*([^{}]+?)` + closeBrace + `\s*\)`,
			Replace: client + ".fetchComment(${1})",
		},
		{
			Name:    "fetch-workflow-states",
			Pattern: c + `\s*\.\s*fetchWorkflowStates` + filterEq("team"),
			Replace: client + ".fetchWorkflowStates(${1})",
		},
		{
			// the word boundary keeps .parentId (and .parentSessionId) as they are
			Name:    "parent-id",
			Pattern: `\.parent\b`,
			Replace: ".parentId",
		},
	}
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// Count returns how many times probe occurs in content.
func Count(content, probe string) int {
	if probe == "" {
		return 0
	}
	return strings.Count(content, probe)
}
