package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeFunc, false},
		{LevelDetail, ScopeFunc, true},
		{LevelDetail, ScopeStep, false},
		{LevelDebug, ScopeStep, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestRingSpanAndPoint(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	span := Begin(ring, ScopeFunc, "func:gen", 0)
	Point(ring, ScopeStep, "coro:identity-created", span.ID(), "")
	span.WithExtra("coreturns", "1").End("ok")

	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Kind != KindSpanBegin || events[1].Kind != KindPoint || events[2].Kind != KindSpanEnd {
		t.Errorf("unexpected kinds: %v %v %v", events[0].Kind, events[1].Kind, events[2].Kind)
	}
	if events[1].ParentID != span.ID() {
		t.Errorf("point parent = %d, want %d", events[1].ParentID, span.ID())
	}
	if events[2].Extra["coreturns"] != "1" {
		t.Errorf("missing extra on end event")
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeStep, name, 0, "")
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", events)
	}
}

func TestStreamTextFormat(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatText)
	Begin(st, ScopePass, "lower", 0).End("")
	Point(st, ScopeStep, "hidden", 0, "")

	out := buf.String()
	if !strings.Contains(out, "→ lower") || !strings.Contains(out, "← lower") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("step event leaked at phase level: %q", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Error("expected Nop for empty context")
	}
	ring := NewRingTracer(1, LevelDebug)
	ctx := WithSpan(WithTracer(context.Background(), ring), 7)
	if FromContext(ctx) != Tracer(ring) {
		t.Error("tracer not propagated")
	}
	if CurrentSpan(ctx) != 7 {
		t.Errorf("CurrentSpan = %d", CurrentSpan(ctx))
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSpanRecordsDuration(t *testing.T) {
	ring := NewRingTracer(4, LevelDebug)
	Begin(ring, ScopePass, "sema", 0).End("")
	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if _, ok := events[1].Extra["dur_us"]; !ok {
		t.Errorf("end event lacks dur_us: %+v", events[1].Extra)
	}
}

func TestFilteredSpanIsInert(t *testing.T) {
	ring := NewRingTracer(4, LevelPhase)
	span := Begin(ring, ScopeStep, "step", 0)
	if span.ID() != 0 {
		t.Errorf("filtered span has ID %d", span.ID())
	}
	span.WithExtra("k", "v").End("done")
	if n := len(ring.Snapshot()); n != 0 {
		t.Errorf("filtered span emitted %d events", n)
	}
}

func TestRingLookup(t *testing.T) {
	ring := NewRingTracer(4, LevelDebug)
	var buf bytes.Buffer
	stream := NewStreamTracer(&buf, LevelDebug, FormatText)
	tests := []struct {
		name string
		t    Tracer
		want *RingTracer
	}{
		{"ring", ring, ring},
		{"multi", NewMultiTracer(LevelDebug, stream, ring), ring},
		{"stream", stream, nil},
		{"nop", Nop, nil},
	}
	for _, tt := range tests {
		if got := Ring(tt.t); got != tt.want {
			t.Errorf("%s: Ring() = %p, want %p", tt.name, got, tt.want)
		}
	}
}

func TestNewAssemblesModes(t *testing.T) {
	tests := []struct {
		mode     Mode
		path     string
		streams  bool
		keeps    bool
		wantJSON bool
	}{
		{"", "", true, false, false},
		{ModeStream, "trace.ndjson", true, false, true},
		{ModeRing, "", false, true, false},
		{ModeBoth, "out.JSON", true, true, true},
		{ModeBoth, "out.log", true, true, false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		tr, err := New(Config{Level: LevelPhase, Mode: tt.mode, Sink: &buf, Path: tt.path})
		if err != nil {
			t.Fatalf("New(%q): %v", tt.mode, err)
		}
		Point(tr, ScopePass, "pass:lower", 0, "")

		if got := buf.Len() > 0; got != tt.streams {
			t.Errorf("mode %q: wrote %q, want output %v", tt.mode, buf.String(), tt.streams)
		}
		if tt.streams && strings.HasPrefix(buf.String(), "{") != tt.wantJSON {
			t.Errorf("mode %q path %q: output %q, want json %v", tt.mode, tt.path, buf.String(), tt.wantJSON)
		}
		ring := Ring(tr)
		if (ring != nil) != tt.keeps {
			t.Fatalf("mode %q: ring = %v, want %v", tt.mode, ring != nil, tt.keeps)
		}
		if ring != nil && len(ring.Snapshot()) != 1 {
			t.Errorf("mode %q: ring kept %d events, want 1", tt.mode, len(ring.Snapshot()))
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeStream, "Ring": ModeRing, "both": ModeBoth} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Error("ParseMode(tape) succeeded")
	}
	if _, err := New(Config{Level: LevelPhase, Mode: "tape"}); err == nil {
		t.Error("New accepted an unknown mode")
	}
}

func TestRingDefaultsSize(t *testing.T) {
	ring := NewRingTracer(0, LevelDebug)
	for range DefaultHistory + 3 {
		Point(ring, ScopeStep, "tick", 0, "")
	}
	if got := len(ring.Snapshot()); got != DefaultHistory {
		t.Errorf("kept %d events, want %d", got, DefaultHistory)
	}
}
