package undo

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gogpu/pixpaint"
)

// buffers is a Resolver over a fixed set of buffers.
type buffers map[pixpaint.BufferID]*pixpaint.PixelBuffer

func (b buffers) LookupBuffer(id pixpaint.BufferID) (*pixpaint.PixelBuffer, error) {
	buf, ok := b[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBufferNotFound, id)
	}
	return buf, nil
}

func newBuffer(t *testing.T) *pixpaint.PixelBuffer {
	t.Helper()
	buf, err := pixpaint.NewPixelBuffer(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

// edit paints one pixel of buf inside its own transaction.
func edit(t *testing.T, l *Log, group int64, buf *pixpaint.PixelBuffer, x, y int, c pixpaint.RGBA8) *Transaction {
	t.Helper()
	tx := l.BeginOrReuse(group, buf)
	buf.SetPixel(x, y, c)
	if err := l.Commit(tx, buf.Snapshot()); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	return tx
}

func checkCursor(t *testing.T, l *Log) {
	t.Helper()
	if c, n := l.Cursor(), l.Len(); c < -1 || c > n-1 {
		t.Fatalf("Cursor() = %d outside [-1, %d]", c, n-1)
	}
}

func TestRoundTrip(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithResolver(buffers{buf.ID(): buf}))

	original := buf.Snapshot()
	const n = 6
	for i := range n {
		edit(t, l, int64(i+1), buf, i%4, i/4, pixpaint.RGBA8{R: uint8(40 * i), A: 255})
	}
	final := buf.Snapshot()

	for range n {
		ok, err := l.Undo()
		if !ok || err != nil {
			t.Fatalf("Undo() = %v, %v", ok, err)
		}
	}
	if !bytes.Equal(buf.Data(), original) {
		t.Error("undoing every edit did not restore the original pixels")
	}
	if ok, _ := l.Undo(); ok {
		t.Error("Undo() past the start reported true")
	}

	for range n {
		ok, err := l.Redo()
		if !ok || err != nil {
			t.Fatalf("Redo() = %v, %v", ok, err)
		}
	}
	if !bytes.Equal(buf.Data(), final) {
		t.Error("redoing every edit did not restore the final pixels")
	}
	if ok, _ := l.Redo(); ok {
		t.Error("Redo() past the end reported true")
	}
}

func TestCoalesceSameGroup(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithResolver(buffers{buf.ID(): buf}))
	original := buf.Snapshot()

	a := edit(t, l, 7, buf, 0, 0, pixpaint.Red)
	b := edit(t, l, 7, buf, 1, 0, pixpaint.Blue)
	if a != b {
		t.Error("same group produced two transactions")
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if err := l.Goto(6, false); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Data(), original) {
		t.Error("undo of a coalesced group did not restore the first before snapshot")
	}
}

func TestReuseReopensCommitted(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog()
	tx := edit(t, l, 1, buf, 0, 0, pixpaint.Red)
	if !tx.Committed() {
		t.Fatal("Committed() = false after Commit")
	}
	again := l.BeginOrReuse(1, buf)
	if again != tx || again.Committed() {
		t.Error("BeginOrReuse did not reopen the group's transaction")
	}
	if got := l.MemoryBytes(); got != int64(len(buf.Data())) {
		t.Errorf("MemoryBytes() = %d, want %d while reopened", got, len(buf.Data()))
	}
	if err := l.Commit(again, buf.Snapshot()); err != nil {
		t.Fatal(err)
	}
}

func TestSameGroupOtherBufferIsSeparate(t *testing.T) {
	a, b := newBuffer(t), newBuffer(t)
	l := NewLog(WithResolver(buffers{a.ID(): a, b.ID(): b}))
	edit(t, l, 1, a, 0, 0, pixpaint.Red)
	edit(t, l, 1, b, 0, 0, pixpaint.Red)
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if ok, err := l.Undo(); !ok || err != nil {
		t.Fatalf("Undo() = %v, %v", ok, err)
	}
	if l.Cursor() != -1 {
		t.Errorf("Cursor() = %d, want -1 after undoing the group", l.Cursor())
	}
	if a.Pixel(0, 0) != pixpaint.Transparent || b.Pixel(0, 0) != pixpaint.Transparent {
		t.Error("undo of a group did not restore both buffers")
	}
}

func TestTruncateOnNewBranch(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithResolver(buffers{buf.ID(): buf}))
	for g := int64(1); g <= 3; g++ {
		edit(t, l, g, buf, int(g), 0, pixpaint.Red)
	}
	if err := l.Goto(1, false); err != nil {
		t.Fatal(err)
	}
	if l.Cursor() != 0 {
		t.Fatalf("Cursor() = %d, want 0", l.Cursor())
	}
	edit(t, l, 4, buf, 0, 3, pixpaint.Blue)

	if got := l.Groups(); len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Errorf("Groups() = %v, want [1 4]", got)
	}
	if l.CanRedo() {
		t.Error("CanRedo() = true after truncation")
	}
	if want := int64(2 * 2 * len(buf.Data())); l.MemoryBytes() != want {
		t.Errorf("MemoryBytes() = %d, want %d", l.MemoryBytes(), want)
	}
}

func TestCountCap(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithMaxTransactions(3))
	for g := int64(1); g <= 5; g++ {
		edit(t, l, g, buf, 0, 0, pixpaint.RGBA8{R: uint8(g), A: 255})
		checkCursor(t, l)
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
	if l.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2", l.Cursor())
	}
	if got := l.Groups(); got[0] != 3 || got[2] != 5 {
		t.Errorf("Groups() = %v, want [3 4 5]", got)
	}
}

func TestMemoryCap(t *testing.T) {
	buf := newBuffer(t)
	txBytes := int64(2 * len(buf.Data()))
	l := NewLog(WithMaxBytes(2*txBytes + txBytes/2))
	for g := int64(1); g <= 4; g++ {
		edit(t, l, g, buf, 0, 0, pixpaint.RGBA8{G: uint8(g), A: 255})
		checkCursor(t, l)
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
	if l.MemoryBytes() != 2*txBytes {
		t.Errorf("MemoryBytes() = %d, want %d", l.MemoryBytes(), 2*txBytes)
	}
}

func TestOversizedTransactionKept(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithMaxBytes(10))
	edit(t, l, 1, buf, 0, 0, pixpaint.Red)
	if l.Len() != 1 || l.Cursor() != 0 {
		t.Errorf("Len(), Cursor() = %d, %d; want 1, 0", l.Len(), l.Cursor())
	}
	edit(t, l, 2, buf, 1, 0, pixpaint.Red)
	if got := l.Groups(); len(got) != 1 || got[0] != 2 {
		t.Errorf("Groups() = %v, want [2]", got)
	}
}

func TestCursorStaysValidUnderEviction(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithMaxTransactions(4), WithResolver(buffers{buf.ID(): buf}))
	group := int64(0)
	for i := range 40 {
		switch i % 5 {
		case 3:
			_, _ = l.Undo()
		case 4:
			_ = l.Goto(group-3, false)
		default:
			group++
			edit(t, l, group, buf, i%4, (i/4)%4, pixpaint.RGBA8{B: uint8(i), A: 255})
		}
		checkCursor(t, l)
	}
}

func TestStaleCommitEvictionClampsCursor(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithMaxTransactions(2), WithResolver(buffers{buf.ID(): buf}))
	edit(t, l, 1, buf, 0, 0, pixpaint.Red)
	open := l.BeginOrReuse(2, buf)
	if err := l.Goto(0, false); err != nil {
		t.Fatal(err)
	}
	edit(t, l, 3, buf, 1, 1, pixpaint.Red)
	// Committing the discarded handle must not corrupt the cursor.
	_ = l.Commit(open, buf.Snapshot())
	checkCursor(t, l)
}

func TestGotoClamps(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithResolver(buffers{buf.ID(): buf}))
	for _, g := range []int64{10, 20, 30} {
		edit(t, l, g, buf, int(g/10), 0, pixpaint.Red)
	}

	tests := []struct {
		target int64
		redo   bool
		want   int
	}{
		{25, false, 1},
		{5, false, -1},
		{20, true, 1},
		{100, true, 2},
		{30, false, 2},
	}
	for _, tt := range tests {
		if err := l.Goto(tt.target, tt.redo); err != nil {
			t.Fatalf("Goto(%d, %v) error = %v", tt.target, tt.redo, err)
		}
		if got := l.Cursor(); got != tt.want {
			t.Errorf("Goto(%d, %v): Cursor() = %d, want %d", tt.target, tt.redo, got, tt.want)
		}
	}
}

func TestGotoIgnoresContradictoryHint(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithResolver(buffers{buf.ID(): buf}))
	edit(t, l, 1, buf, 0, 0, pixpaint.Red)
	edit(t, l, 2, buf, 1, 0, pixpaint.Red)

	if err := l.Goto(1, true); err != nil {
		t.Fatal(err)
	}
	if l.Cursor() != 1 {
		t.Errorf("redo hint moved the cursor back to %d", l.Cursor())
	}
	_ = l.Goto(0, false)
	if err := l.Goto(2, false); err != nil {
		t.Fatal(err)
	}
	if l.Cursor() != -1 {
		t.Errorf("undo hint moved the cursor forward to %d", l.Cursor())
	}
}

func TestGotoContinuesPastFailures(t *testing.T) {
	a, b := newBuffer(t), newBuffer(t)
	live := buffers{a.ID(): a, b.ID(): b}
	l := NewLog(WithResolver(live))
	original := a.Snapshot()

	edit(t, l, 1, a, 0, 0, pixpaint.Red)
	edit(t, l, 2, b, 0, 0, pixpaint.Red)
	edit(t, l, 3, a, 1, 0, pixpaint.Red)
	delete(live, b.ID())

	err := l.Goto(0, false)
	if !errors.Is(err, ErrBufferNotFound) {
		t.Errorf("Goto() error = %v, want ErrBufferNotFound", err)
	}
	if l.Cursor() != -1 {
		t.Errorf("Cursor() = %d, want -1", l.Cursor())
	}
	if !bytes.Equal(a.Data(), original) {
		t.Error("live buffer was not fully undone after a failed step")
	}
}

func TestRedoUncommitted(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithResolver(buffers{buf.ID(): buf}))
	edit(t, l, 1, buf, 0, 0, pixpaint.Red)
	l.BeginOrReuse(2, buf)

	if err := l.Goto(1, false); err != nil {
		t.Fatal(err)
	}
	if err := l.Goto(2, true); !errors.Is(err, ErrNotCommitted) {
		t.Errorf("Goto(redo) error = %v, want ErrNotCommitted", err)
	}
}

func TestNoResolver(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog()
	edit(t, l, 1, buf, 0, 0, pixpaint.Red)
	if _, err := l.Undo(); !errors.Is(err, ErrBufferNotFound) {
		t.Errorf("Undo() error = %v, want ErrBufferNotFound", err)
	}
}

func TestResolverMayQueryLog(t *testing.T) {
	a, b := newBuffer(t), newBuffer(t)
	bufs := buffers{a.ID(): a, b.ID(): b}
	var l *Log
	lookups := 0
	l = NewLog(WithResolver(ResolverFunc(func(id pixpaint.BufferID) (*pixpaint.PixelBuffer, error) {
		lookups++
		_ = l.CanUndo()
		_ = l.Len()
		return bufs.LookupBuffer(id)
	})))
	edit(t, l, 1, a, 0, 0, pixpaint.Red)
	edit(t, l, 2, b, 0, 0, pixpaint.Red)
	edit(t, l, 3, a, 1, 0, pixpaint.Red)

	done := make(chan error, 1)
	go func() { done <- l.Goto(0, false) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Goto() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Goto deadlocked on a resolver that queries the log")
	}
	if l.Cursor() != -1 {
		t.Errorf("Cursor() = %d, want -1", l.Cursor())
	}
	if lookups != 2 {
		t.Errorf("resolver called %d times, want once per buffer", lookups)
	}
	if a.Pixel(0, 0).A != 0 || b.Pixel(0, 0).A != 0 {
		t.Error("undo did not restore both buffers")
	}
}

func TestAppliedHook(t *testing.T) {
	buf := newBuffer(t)
	var got []pixpaint.BufferID
	l := NewLog(
		WithResolver(buffers{buf.ID(): buf}),
		WithApplied(func(id pixpaint.BufferID) { got = append(got, id) }),
	)
	edit(t, l, 1, buf, 0, 0, pixpaint.Red)
	edit(t, l, 2, buf, 0, 0, pixpaint.Blue)
	_ = l.Goto(0, false)
	if len(got) != 2 || got[0] != buf.ID() {
		t.Errorf("applied = %v, want two calls for %d", got, buf.ID())
	}
}

func TestDoubleCommitPanics(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog()
	tx := edit(t, l, 1, buf, 0, 0, pixpaint.Red)

	defer func() {
		if recover() == nil {
			t.Error("second Commit did not panic")
		}
	}()
	_ = l.Commit(tx, buf.Snapshot())
}

func TestCommitSizeMismatch(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog()
	tx := l.BeginOrReuse(1, buf)
	if err := l.Commit(tx, make([]uint8, 3)); !errors.Is(err, pixpaint.ErrSizeMismatch) {
		t.Errorf("Commit() error = %v, want ErrSizeMismatch", err)
	}
	if tx.Committed() {
		t.Error("failed Commit marked the transaction committed")
	}
}

func TestTransactionChanged(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog()
	tx := l.BeginOrReuse(1, buf)
	if tx.Changed() {
		t.Error("open transaction reports Changed")
	}
	_ = l.Commit(tx, buf.Snapshot())
	if tx.Changed() {
		t.Error("empty edit reports Changed")
	}
	tx = edit(t, l, 2, buf, 0, 0, pixpaint.Red)
	if !tx.Changed() {
		t.Error("edit does not report Changed")
	}
}

func TestClear(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog()
	edit(t, l, 1, buf, 0, 0, pixpaint.Red)
	l.Clear()
	if l.Len() != 0 || l.Cursor() != -1 || l.MemoryBytes() != 0 || l.CanUndo() {
		t.Errorf("after Clear: Len %d Cursor %d Bytes %d", l.Len(), l.Cursor(), l.MemoryBytes())
	}
}

func BenchmarkBeginCommit(b *testing.B) {
	buf := pixpaint.MustNewPixelBuffer(256, 256)
	l := NewLog()
	var g int64
	b.ReportAllocs()
	for b.Loop() {
		g++
		tx := l.BeginOrReuse(g, buf)
		_ = l.Commit(tx, buf.Snapshot())
	}
}

func TestDiscardedCommitLeavesLogAlone(t *testing.T) {
	buf := newBuffer(t)
	l := NewLog(WithResolver(buffers{buf.ID(): buf}))
	edit(t, l, 1, buf, 0, 0, pixpaint.Red)
	stale := l.BeginOrReuse(2, buf)
	_ = l.Goto(1, false)
	edit(t, l, 3, buf, 1, 0, pixpaint.Red)

	before := l.MemoryBytes()
	if err := l.Commit(stale, buf.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if l.MemoryBytes() != before {
		t.Errorf("MemoryBytes() = %d, want %d", l.MemoryBytes(), before)
	}
	if got := l.Groups(); len(got) != 2 || got[1] != 3 {
		t.Errorf("Groups() = %v, want [1 3]", got)
	}
}
