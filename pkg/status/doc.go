/*
Package status owns the file system side of a rewrite: reading sources,
writing them back atomically, keeping backups and tracking what happened to
every file.

	            +-------------+
	            |   Manager   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+-----+
	|   Files   |           |  Status  |
	| (storage) |           | (report) |
	+-----------+           +----------+

🎯 Purpose:
- Reads a source file in one blocking read
- Writes the result through a temp file and a rename
- Copies the original to <file>.bak when asked and restores it on demand
- Tracks per-file status (rewritten, unchanged, preview, failed) and progress

⚡ Concurrency:
Manager is shared by the runner's workers. Tracking and progress are guarded
by a mutex; file operations on distinct paths need no coordination, and the
runner never hands the same path to two workers.

🔍 Example:

	mgr := status.New(".")

	content, err := mgr.ReadFile(ctx, "src/EdgeWorker.ts")
	if _, err := mgr.BackupFile(ctx, "src/EdgeWorker.ts"); err != nil {
		return err
	}
	err = mgr.WriteFileAtomic(ctx, "src/EdgeWorker.ts", rewritten)

	mgr.TrackFile(ctx, "src/EdgeWorker.ts", status.FileInfo{
		Status:   status.StatusRewritten,
		Checksum: status.Checksum(rewritten),
	})
*/
package status
