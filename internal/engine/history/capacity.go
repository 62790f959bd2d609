package history

import (
	"fmt"
	"runtime"
)

// Default capacity policy values.
const (
	DefaultFloor          = 4 << 10
	DefaultLargeThreshold = 2 << 20
	DefaultLargeStep      = 2 << 20
)

// CapacityPolicy controls how the log buffer grows and shrinks.
type CapacityPolicy struct {
	// Floor is the smallest capacity the log keeps.
	Floor int

	// LargeThreshold is the size above which growth switches from
	// doubling to fixed LargeStep increments.
	LargeThreshold int

	// LargeStep is the increment used above LargeThreshold.
	LargeStep int

	// Limit caps the capacity. Zero means unlimited.
	Limit int
}

// DefaultCapacityPolicy returns the policy used when none is configured.
func DefaultCapacityPolicy() CapacityPolicy {
	return CapacityPolicy{
		Floor:          DefaultFloor,
		LargeThreshold: DefaultLargeThreshold,
		LargeStep:      DefaultLargeStep,
	}
}

func (p CapacityPolicy) normalized() CapacityPolicy {
	if p.Floor <= 0 {
		p.Floor = DefaultFloor
	}
	if p.LargeThreshold <= 0 {
		p.LargeThreshold = DefaultLargeThreshold
	}
	if p.LargeStep <= 0 {
		p.LargeStep = DefaultLargeStep
	}
	if p.Limit < 0 {
		p.Limit = 0
	}
	return p
}

// grown returns the capacity needed to hold need bytes, starting from cur.
func (p CapacityPolicy) grown(cur, need int) (int, error) {
	if p.Limit > 0 && need > p.Limit {
		return cur, fmt.Errorf("%w: need %d bytes, limit %d", ErrCapacityExceeded, need, p.Limit)
	}
	c := max(cur, p.Floor)
	if need > p.LargeThreshold {
		for c < need {
			c += p.LargeStep
		}
	} else {
		for c < need {
			c *= 2
		}
	}
	if p.Limit > 0 && c > p.Limit {
		c = p.Limit
	}
	return c, nil
}

// shrunk returns the capacity worth keeping for live bytes, starting from
// cur. It returns cur when no shrink is warranted.
func (p CapacityPolicy) shrunk(cur, live int) int {
	c := cur
	for {
		if c > p.LargeThreshold {
			if c-live > p.LargeStep && c-p.LargeStep >= max(live, p.Floor) {
				c -= p.LargeStep
				continue
			}
			break
		}
		if c > 2*live && c/2 >= p.Floor {
			c /= 2
			continue
		}
		break
	}
	return c
}

// allocate returns a zeroed buffer of n bytes. Allocation panics that the
// runtime reports as recoverable errors, such as an out of range length,
// are turned into ErrCapacityExceeded.
func allocate(n int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(runtime.Error); ok {
				err = fmt.Errorf("%w: allocating %d bytes: %v", ErrCapacityExceeded, n, re)
				return
			}
			panic(r)
		}
	}()
	return make([]byte, n), nil
}
