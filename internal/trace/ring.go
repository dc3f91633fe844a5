package trace

import (
	"io"
	"sync"
)

// RingTracer remembers the most recent events so a failed run can show
// what the passes were doing. Nothing is written until Dump.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	total uint64 // events ever stored; buf[total%len(buf)] is the next slot
	level Level
}

// NewRingTracer keeps up to size events; size <= 0 means DefaultHistory.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = DefaultHistory
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	kept := *ev
	kept.Seq = NextSeq()

	t.mu.Lock()
	t.buf[t.total%uint64(len(t.buf))] = kept
	t.total++
	t.mu.Unlock()
}

// Snapshot copies the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := uint64(len(t.buf))
	n := min(t.total, size)
	out := make([]Event, 0, n)
	for i := t.total - n; i < t.total; i++ {
		out = append(out, t.buf[i%size])
	}
	return out
}

// Dump formats the snapshot onto w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
