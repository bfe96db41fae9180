// Package operation runs rewrite passes over source files.
//
//	+-------------+     +-------------+     +-------------+
//	|   Targets   | --> |   Runner    | --> |  Reporter   |
//	| (doublestar)|     | (errgroup)  |     | (console)   |
//	+-------------+     +------+------+     +-------------+
//	                           |
//	                    +------+------+
//	                    |   Process   |
//	                    | read once   |
//	                    | passes      |
//	                    | write once  |
//	                    +------+------+
//	                           |
//	         +-----------------+-----------------+
//	         |                 |                 |
//	   +-----+-----+     +-----+-----+     +-----+------+
//	   |  blocks   |     | activity  |     | signatures |
//	   | (literal) |     |  (idiom)  |     |  (regex)   |
//	   +-----------+     +-----------+     +------------+
//
// 🎯 Purpose:
//   - Expands file targets and globs
//   - Builds the configured passes (blocks, activity, signatures)
//   - Processes each file: one read, every pass in memory, one atomic write
//   - Counts probes before and after, renders a diff in dry runs, keeps .bak
//     backups on request
//
// 🔄 Flow:
// 1. ExpandTargets resolves the command line to files
// 2. BuildPasses turns the config into passes
// 3. Runner.Run hands each file to Process, sequentially or with --jobs
// 4. Every FileReport goes to the Reporter and the status tracker
//
// ⚡ Concurrency:
// Runner never schedules the same path twice, so there is at most one writer
// per file. Reports are delivered one at a time.
//
// 🔍 Example:
//
//	passes, err := operation.BuildPasses(ctx, cfg, cfg.Passes)
//	files, err := operation.ExpandTargets([]string{"src/**/*.ts"}, nil)
//
//	runner := operation.NewRunner(cfg.Jobs, status.New("."), reporter)
//	summary, err := runner.Run(ctx, files, passes, operation.Options{
//		Backup: cfg.Backup,
//		Probes: cfg.Probes,
//	})
package operation
