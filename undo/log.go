package undo

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/gogpu/pixpaint"
)

// Defaults for the log caps.
const (
	DefaultMaxTransactions = 50
	DefaultMaxBytes        = 512 << 20
)

var (
	// ErrBufferNotFound is returned by a Resolver when a buffer no longer
	// exists.
	ErrBufferNotFound = errors.New("undo: buffer not found")

	// ErrNotCommitted is returned when redoing a transaction whose after
	// snapshot was never recorded.
	ErrNotCommitted = errors.New("undo: transaction not committed")
)

// Resolver finds the live buffer for an id when replaying a transaction.
// It is called without the log's lock held.
type Resolver interface {
	LookupBuffer(id pixpaint.BufferID) (*pixpaint.PixelBuffer, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(id pixpaint.BufferID) (*pixpaint.PixelBuffer, error)

// LookupBuffer calls f(id).
func (f ResolverFunc) LookupBuffer(id pixpaint.BufferID) (*pixpaint.PixelBuffer, error) {
	return f(id)
}

// Log is a capped, linear transaction history.
//
// The cursor is the index of the transaction most recently applied in the
// done direction: Len()-1 when everything is redone, -1 when everything is
// undone.
//
// Log is safe for concurrent use. Pushes, evictions and walks are atomic
// with respect to each other.
type Log struct {
	mu       sync.Mutex
	txs      []*Transaction
	cursor   int
	bytes    int64
	maxCount int
	maxBytes int64

	resolver Resolver
	logger   *slog.Logger
	applied  func(pixpaint.BufferID)
}

// Option configures a Log.
type Option func(*Log)

// WithMaxTransactions caps the number of transactions. Values below 1 are
// ignored.
func WithMaxTransactions(n int) Option {
	return func(l *Log) {
		if n >= 1 {
			l.maxCount = n
		}
	}
}

// WithMaxBytes caps the total snapshot memory. Values below 1 are ignored.
func WithMaxBytes(n int64) Option {
	return func(l *Log) {
		if n >= 1 {
			l.maxBytes = n
		}
	}
}

// WithResolver sets how buffers are found during Goto.
func WithResolver(r Resolver) Option {
	return func(l *Log) {
		l.resolver = r
	}
}

// WithLogger sets the logger. The default is pixpaint.Logger().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithApplied registers fn to be called with the buffer id after each
// successful undo or redo step.
func WithApplied(fn func(pixpaint.BufferID)) Option {
	return func(l *Log) {
		l.applied = fn
	}
}

// NewLog creates an empty log.
func NewLog(opts ...Option) *Log {
	l := &Log{
		cursor:   -1,
		maxCount: DefaultMaxTransactions,
		maxBytes: DefaultMaxBytes,
		logger:   pixpaint.Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BeginOrReuse returns the transaction for edits to buf under group.
//
// The newest transaction is reused when it belongs to the same group and
// buffer and the cursor is on it; a reused transaction is reopened and keeps
// its original before snapshot. Otherwise the history after the cursor is
// discarded and a new transaction capturing buf is pushed.
func (l *Log) BeginOrReuse(group int64, buf *pixpaint.PixelBuffer) *Transaction {
	if buf == nil {
		panic("undo: BeginOrReuse with nil buffer")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.txs); n > 0 && l.cursor == n-1 {
		last := l.txs[n-1]
		if last.group == group && last.buffer == buf.ID() {
			if last.committed {
				l.bytes -= int64(len(last.after))
				last.after = nil
				last.committed = false
			}
			l.logger.Debug("undo transaction reused", "group", group, "buffer", buf.ID())
			return last
		}
	}

	l.truncateLocked()
	tx := &Transaction{
		group:  group,
		buffer: buf.ID(),
		before: buf.Snapshot(),
	}
	l.txs = append(l.txs, tx)
	l.cursor = len(l.txs) - 1
	l.bytes += int64(len(tx.before))
	l.logger.Debug("undo transaction opened",
		"group", group, "buffer", buf.ID(), "index", l.cursor)
	return tx
}

// truncateLocked drops every transaction after the cursor.
func (l *Log) truncateLocked() {
	if l.cursor >= len(l.txs)-1 {
		return
	}
	for _, tx := range l.txs[l.cursor+1:] {
		l.bytes -= tx.Bytes()
		tx.discarded = true
	}
	dropped := len(l.txs) - (l.cursor + 1)
	clear(l.txs[l.cursor+1:])
	l.txs = l.txs[:l.cursor+1]
	l.logger.Debug("undo history truncated", "dropped", dropped)
}

// Commit records after as the transaction's final pixels and enforces the
// caps. Committing a transaction twice panics. A transaction the log has
// already discarded is sealed without affecting the log.
//
// The caps are applied after the push, so a single transaction larger than
// the byte cap is kept.
func (l *Log) Commit(tx *Transaction, after []uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tx.committed {
		panic(fmt.Sprintf("undo: transaction for group %d committed twice", tx.group))
	}
	if len(after) != len(tx.before) {
		return fmt.Errorf("%w: after has %d bytes, before has %d",
			pixpaint.ErrSizeMismatch, len(after), len(tx.before))
	}
	tx.after = after
	tx.committed = true
	if tx.discarded {
		return nil
	}
	l.bytes += int64(len(after))
	l.enforceCapsLocked()
	return nil
}

// enforceCapsLocked evicts from the oldest end until both caps hold. The
// byte cap never evicts the last remaining transaction.
func (l *Log) enforceCapsLocked() {
	for l.bytes > l.maxBytes && len(l.txs) > 1 {
		l.evictOldestLocked("memory")
	}
	for len(l.txs) > l.maxCount {
		l.evictOldestLocked("count")
	}
}

func (l *Log) evictOldestLocked(reason string) {
	tx := l.txs[0]
	l.txs[0] = nil
	l.txs = l.txs[1:]
	l.bytes -= tx.Bytes()
	tx.discarded = true
	l.cursor = max(l.cursor-1, -1)
	l.logger.Debug("undo transaction evicted",
		"reason", reason, "group", tx.group, "bytes", tx.Bytes(), "cursor", l.cursor)
}

// Goto moves the cursor to the newest transaction whose group is not after
// target, undoing or redoing one transaction at a time. A target before
// every known group undoes everything; one after every group redoes
// everything.
//
// isRedo is the host's direction: an undo never moves the cursor forward and
// a redo never moves it back. Steps that fail are logged and skipped; their
// errors are joined into the result.
//
// Buffers are resolved before the log is locked, so a Resolver may call
// back into the log.
func (l *Log) Goto(target int64, isRedo bool) error {
	resolved := make(map[pixpaint.BufferID]lookup)
	l.mu.Lock()
	for {
		missing := l.unresolvedLocked(target, resolved)
		if len(missing) == 0 {
			break
		}
		l.mu.Unlock()
		for _, id := range missing {
			resolved[id] = l.lookup(id)
		}
		l.mu.Lock()
	}

	dest := l.destinationLocked(target)
	if (!isRedo && dest > l.cursor) || (isRedo && dest < l.cursor) {
		l.logger.Debug("undo goto ignored: direction mismatch",
			"target", target, "redo", isRedo, "cursor", l.cursor, "dest", dest)
		l.mu.Unlock()
		return nil
	}

	var (
		errs    []error
		touched []pixpaint.BufferID
	)
	step := func(tx *Transaction, redo bool) {
		if err := apply(tx, resolved[tx.buffer], redo); err != nil {
			l.logger.Error("undo step failed",
				"group", tx.group, "buffer", tx.buffer, "redo", redo, "err", err)
			errs = append(errs, err)
			return
		}
		touched = append(touched, tx.buffer)
	}
	for l.cursor > dest {
		step(l.txs[l.cursor], false)
		l.cursor--
	}
	for l.cursor < dest {
		l.cursor++
		step(l.txs[l.cursor], true)
	}
	l.logger.Debug("undo goto", "target", target, "redo", isRedo, "cursor", l.cursor)
	applied := l.applied
	l.mu.Unlock()

	if applied != nil {
		for _, id := range touched {
			applied(id)
		}
	}
	return errors.Join(errs...)
}

// destinationLocked returns the index of the newest transaction whose
// group is at or before target, or -1 when none is.
func (l *Log) destinationLocked(target int64) int {
	for i := len(l.txs) - 1; i >= 0; i-- {
		if l.txs[i].group <= target {
			return i
		}
	}
	return -1
}

// unresolvedLocked lists the buffers a walk toward target would touch that
// are not in resolved yet.
func (l *Log) unresolvedLocked(target int64, resolved map[pixpaint.BufferID]lookup) []pixpaint.BufferID {
	dest := l.destinationLocked(target)
	lo, hi := min(l.cursor, dest)+1, max(l.cursor, dest)
	var missing []pixpaint.BufferID
	for i := lo; i <= hi; i++ {
		id := l.txs[i].buffer
		if _, ok := resolved[id]; !ok && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// lookup is the outcome of resolving one buffer id.
type lookup struct {
	buf *pixpaint.PixelBuffer
	err error
}

// lookup resolves id through the resolver. It must be called without l.mu
// held.
func (l *Log) lookup(id pixpaint.BufferID) lookup {
	if l.resolver == nil {
		return lookup{err: fmt.Errorf("%w: no resolver for buffer %d", ErrBufferNotFound, id)}
	}
	buf, err := l.resolver.LookupBuffer(id)
	if err == nil && buf == nil {
		err = fmt.Errorf("%w: buffer %d", ErrBufferNotFound, id)
	}
	return lookup{buf: buf, err: err}
}

// apply restores one side of tx into the resolved buffer.
func apply(tx *Transaction, r lookup, redo bool) error {
	pixels := tx.before
	if redo {
		if !tx.committed {
			return fmt.Errorf("%w: group %d", ErrNotCommitted, tx.group)
		}
		pixels = tx.after
	}
	if r.err != nil {
		return r.err
	}
	return r.buf.Restore(pixels)
}

// Undo undoes every transaction of the newest applied group. It reports
// false when nothing is left to undo.
func (l *Log) Undo() (bool, error) {
	l.mu.Lock()
	if l.cursor < 0 {
		l.mu.Unlock()
		return false, nil
	}
	target := l.txs[l.cursor].group - 1
	l.mu.Unlock()
	return true, l.Goto(target, false)
}

// Redo redoes every transaction of the next group. It reports false when
// nothing is left to redo.
func (l *Log) Redo() (bool, error) {
	l.mu.Lock()
	if l.cursor >= len(l.txs)-1 {
		l.mu.Unlock()
		return false, nil
	}
	target := l.txs[l.cursor+1].group
	l.mu.Unlock()
	return true, l.Goto(target, true)
}

// Len returns the number of transactions.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.txs)
}

// Cursor returns the index of the most recently applied transaction, or -1.
func (l *Log) Cursor() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

// MemoryBytes returns the total size of all snapshots.
func (l *Log) MemoryBytes() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bytes
}

// CanUndo reports whether a transaction is applied.
func (l *Log) CanUndo() bool {
	return l.Cursor() >= 0
}

// CanRedo reports whether a transaction after the cursor exists.
func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor < len(l.txs)-1
}

// Groups returns the group of every transaction, oldest first.
func (l *Log) Groups() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	groups := make([]int64, len(l.txs))
	for i, tx := range l.txs {
		groups[i] = tx.group
	}
	return groups
}

// Clear drops every transaction.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, tx := range l.txs {
		tx.discarded = true
	}
	clear(l.txs)
	l.txs = l.txs[:0]
	l.cursor = -1
	l.bytes = 0
}
