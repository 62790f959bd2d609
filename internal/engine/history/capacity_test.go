package history

import (
	"errors"
	"testing"
)

func TestCapacityPolicyGrown(t *testing.T) {
	p := DefaultCapacityPolicy()
	tests := []struct {
		name      string
		cur, need int
		want      int
	}{
		{"fits", 4096, 100, 4096},
		{"double once", 4096, 5000, 8192},
		{"double to threshold", 1 << 20, 1<<20 + 1, 2 << 20},
		{"large steps", 4096, 3 << 20, 4096 + 4<<20},
		{"step from large", 4 << 20, 5 << 20, 6 << 20},
		{"below floor", 0, 10, DefaultFloor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.grown(tt.cur, tt.need)
			if err != nil {
				t.Fatalf("grown(%d, %d) failed: %v", tt.cur, tt.need, err)
			}
			if got != tt.want {
				t.Errorf("grown(%d, %d) = %d, want %d", tt.cur, tt.need, got, tt.want)
			}
		})
	}
}

func TestCapacityPolicyGrownLimit(t *testing.T) {
	p := CapacityPolicy{Floor: 64, LargeThreshold: 1 << 20, LargeStep: 1 << 20, Limit: 100}

	if _, err := p.grown(64, 101); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
	// Doubling past the limit is clamped to it.
	got, err := p.grown(64, 90)
	if err != nil {
		t.Fatalf("grown failed: %v", err)
	}
	if got != 100 {
		t.Errorf("grown(64, 90) = %d, want 100", got)
	}
}

func TestCapacityPolicyShrunk(t *testing.T) {
	p := DefaultCapacityPolicy()
	tests := []struct {
		name      string
		cur, live int
		want      int
	}{
		{"floor", 4096, 0, 4096},
		{"half full", 8192, 5000, 8192},
		{"one halving", 8192, 100, 4096},
		{"many halvings", 64 << 10, 100, 4096},
		{"large step", 6 << 20, 3 << 20, 4 << 20},
		{"large to floor", 4<<20 + 4096, 10, 4096},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.shrunk(tt.cur, tt.live); got != tt.want {
				t.Errorf("shrunk(%d, %d) = %d, want %d", tt.cur, tt.live, got, tt.want)
			}
		})
	}
}

func TestCapacityPolicyNormalized(t *testing.T) {
	p := CapacityPolicy{Limit: -5}.normalized()
	want := DefaultCapacityPolicy()
	if p != want {
		t.Errorf("normalized() = %+v, want %+v", p, want)
	}
}

func TestAllocate(t *testing.T) {
	buf, err := allocate(16)
	if err != nil || len(buf) != 16 {
		t.Errorf("allocate(16) = %d bytes, %v", len(buf), err)
	}
	if _, err := allocate(-1); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("allocate(-1) error = %v, want ErrCapacityExceeded", err)
	}
}
