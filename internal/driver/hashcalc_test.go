package driver_test

import (
	"testing"

	"corogen/internal/config"
	"corogen/internal/driver"
)

func TestComputeDigest(t *testing.T) {
	base := config.Default()
	src := []byte("int f() { return 1; }")

	d1, err := driver.ComputeDigest(src, base)
	if err != nil {
		t.Fatal(err)
	}
	if d1.IsZero() {
		t.Fatal("zero digest")
	}
	d2, _ := driver.ComputeDigest(src, base)
	if d1 != d2 {
		t.Error("digest is not deterministic")
	}

	jobs := base
	jobs.Lower.Jobs = 16
	if d, _ := driver.ComputeDigest(src, jobs); d != d1 {
		t.Error("jobs must not change the digest")
	}

	tests := []struct {
		name   string
		src    []byte
		mutate func(*config.Config)
	}{
		{"source", []byte("int f() { return 2; }"), func(*config.Config) {}},
		{"new_align", src, func(c *config.Config) { c.Target.NewAlign = 64 }},
		{"char_width", src, func(c *config.Config) { c.Target.CharWidth = 16 }},
		{"debug_info", src, func(c *config.Config) { c.Lower.DebugInfo = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			d, err := driver.ComputeDigest(tt.src, cfg)
			if err != nil {
				t.Fatal(err)
			}
			if d == d1 {
				t.Errorf("changing %s kept the digest", tt.name)
			}
		})
	}
}
