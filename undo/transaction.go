package undo

import "github.com/gogpu/pixpaint"

// Transaction is the pixel delta of one undo group on one buffer.
// After Commit it is immutable, except that Log.BeginOrReuse reopens the
// newest transaction for further edits in the same group and buffer,
// dropping its after snapshot until the next Commit.
type Transaction struct {
	group     int64
	buffer    pixpaint.BufferID
	before    []uint8
	after     []uint8
	committed bool

	// discarded is set once the log no longer holds the transaction.
	discarded bool
}

// Group returns the host undo group the transaction belongs to.
func (t *Transaction) Group() int64 { return t.group }

// Buffer returns the id of the edited buffer.
func (t *Transaction) Buffer() pixpaint.BufferID { return t.buffer }

// Committed reports whether the after snapshot has been recorded.
func (t *Transaction) Committed() bool { return t.committed }

// Bytes returns the memory held by the snapshots.
func (t *Transaction) Bytes() int64 {
	return int64(len(t.before) + len(t.after))
}

// Changed reports whether the committed snapshots differ.
func (t *Transaction) Changed() bool {
	if !t.committed || len(t.before) != len(t.after) {
		return t.committed
	}
	for i := range t.before {
		if t.before[i] != t.after[i] {
			return true
		}
	}
	return false
}
