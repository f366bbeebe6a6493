// Package undo records whole-buffer pixel snapshots so paint edits can be
// undone and redone in step with a host editor's undo groups.
//
// The host owns the notion of an undo group: an opaque, increasing id that
// names one user-visible action. Every edit opens a [Transaction] with
// [Log.BeginOrReuse] under the host's current group, captures the buffer
// before the first write, and is sealed with [Log.Commit] once the
// interaction ends. Edits made while the host is still in the same group
// land in the same transaction.
//
// When the host undoes or redoes, it calls [Log.Goto] with the group it has
// moved to. The log walks its cursor one transaction at a time toward that
// group, restoring the before or after pixels of each step. A step that
// fails, typically because its buffer was deleted, is logged and skipped.
//
// The log is capped by transaction count and by total snapshot bytes; the
// oldest transactions are evicted first and the cursor is kept in range.
package undo
