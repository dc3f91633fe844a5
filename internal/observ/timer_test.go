package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	parse := tm.Begin("parse")
	time.Sleep(time.Millisecond)
	tm.End(parse, "")
	lower := tm.Begin("lower")
	tm.End(lower, "3 funcs")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(r.Phases))
	}
	if r.Phases[0].Name != "parse" || r.Phases[0].DurationMS <= 0 {
		t.Errorf("parse phase = %+v", r.Phases[0])
	}
	if r.Phases[1].Note != "3 funcs" {
		t.Errorf("lower note = %q", r.Phases[1].Note)
	}
	if r.TotalMS < r.Phases[0].DurationMS {
		t.Errorf("total %f below parse %f", r.TotalMS, r.Phases[0].DurationMS)
	}

	s := r.Summary()
	for _, want := range []string{"timings:", "parse", "lower", "// 3 funcs", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary lacks %q:\n%s", want, s)
		}
	}
}

func TestEmptyReport(t *testing.T) {
	var tm *Timer
	if r := tm.Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Errorf("nil timer report = %+v", r)
	}
}
