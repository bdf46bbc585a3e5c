package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"CPU-bound", 1.0, 0, 1, availableCPU},
		{"I/O-bound", 2.0, 0, 1, availableCPU * 2},
		{"limit lower than calculated", 2.0, 2, 1, 2},
		{"very low multiplier", 0.1, 0, 1, max(1, int(float64(availableCPU)*0.1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want in [%d, %d]",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		limit int
		want  int
	}{
		{"valid override", "3", 0, 3},
		{"override capped by limit", "12", 4, 4},
		{"zero ignored", "0", 0, max(1, runtime.GOMAXPROCS(0))},
		{"negative ignored", "-2", 0, max(1, runtime.GOMAXPROCS(0))},
		{"garbage ignored", "lots", 0, max(1, runtime.GOMAXPROCS(0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(OverrideEnv, tt.env)
			if got := Count(1.0, tt.limit); got != tt.want {
				t.Errorf("Count(1.0, %d) with %s=%q = %d, want %d", tt.limit, OverrideEnv, tt.env, got, tt.want)
			}
		})
	}
}

func TestForCPU(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	if got := ForCPU(1); got != 1 {
		t.Errorf("ForCPU(1) = %d, want 1", got)
	}
	if got := ForCPU(0); got != runtime.GOMAXPROCS(0) {
		t.Errorf("ForCPU(0) = %d, want %d", got, runtime.GOMAXPROCS(0))
	}
}
