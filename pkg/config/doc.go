/*
Package config loads the .edgerewrite configuration file.

	            +-------------+
	            |   Config    |
	            |  (options)  |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|   HCL   |   |  YAML   |   |  JSON   |
	| Parser  |   | Parser  |   | (jsonc) |
	+---------+   +---------+   +---------+

🎯 Purpose:
- Finds .edgerewrite.hcl, .edgerewrite.yaml, .edgerewrite.yml or
  .edgerewrite.json next to the sources
- Parses it with the parser registered for its extension
- Fills defaults and validates the result

A missing config file is not an error: every field has a default that
matches the EdgeWorker migration (client linearClient, enum
AgentActivityContentType, all three passes).

🔍 Example:

	# .edgerewrite.yaml
	client: linearClient
	passes: [activity, signatures]
	content_types:
	  note: Note
	backup: true

	cfg, err := config.Resolve(ctx, "", ".")
	if err != nil {
		return err
	}
	matcher, err := idiom.NewMatcher(cfg.IdiomOptions())
*/
package config
