/*
Package idiom recognizes the legacy createAgentActivity call idioms in
TypeScript source and rewrites them to the two-argument call form.

	+------------------+     +----------------+     +-----------+
	|   recognizers    | --> | state machine  | --> |  emitter  |
	| (call-head regex)|     | (bracket depth)|     | (one form)|
	+------------------+     +----------------+     +-----------+

🎯 Shapes:

	// bound call
	const result = await linearClient.createAgentActivity({
		agentSessionId: id,
		content: { type: "thought", body: text },
	});
	if (result.success) { console.log(...); } else { ... }

	// bare call
	await linearClient.createAgentActivity({ agentSessionId: id, content: {...} });

	// input variable
	const activityInput = { agentSessionId: id, content: {...} };
	const result = await linearClient.createAgentActivity(activityInput);
	if (result.success) { ... } else { ... }

all become

	await linearClient.createAgentActivity(id, {
		type: AgentActivityContentType.Thought,
		body: text,
	});
	console.log(...);

🔄 Per idiom state machine:

	seeking-call -> reading-fields -> awaiting-branch
	  -> reading-success-block [-> reading-failure-block] -> splicing

Regular expressions only anchor the call heads. Object literals, bodies,
branch blocks and the preserved log call are delimited by a bracket-depth
scanner that understands strings, template literals and comments, so a body
such as `${JSON.stringify({ a: 1 })}` is never cut short.

Anything that does not fit exactly (unknown content type, extra fields, a
bound result with no success branch, else-if chains, success branches that
do more than log) is reported as Unmatched and left as it was.
*/
package idiom
