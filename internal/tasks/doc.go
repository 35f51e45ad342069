// Package tasks runs background work on a backlite queue stored in a
// SQLite database next to the catalog ("<name>-tasks<ext>").
//
// The only queue is cleanup_orphan_uploads, which removes cover images that
// no book references. It is enqueued by the scheduler, by
// POST /api/tasks/cleanup-uploads/run and can be run inline by the
// cleanup-uploads command.
package tasks
