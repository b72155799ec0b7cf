package admit

import (
	"testing"

	perr "vibecheck/internal/platform/errors"
)

func TestController_OverloadedAtQueueLimit(t *testing.T) {
	c := New(10, 5)
	for i := 0; i < 10; i++ {
		if err := c.Admit(); err != nil {
			t.Fatalf("admit %d: %v", i, err)
		}
	}
	err := c.Admit()
	if !perr.IsCode(err, perr.ErrorCodeOverloaded) {
		t.Fatalf("want overloaded, got %v", err)
	}
	if c.Queued() != 10 {
		t.Fatalf("queued=%d want 10", c.Queued())
	}
}

func TestController_SaturatedAtCombinedCeiling(t *testing.T) {
	c := New(5, 2)
	for i := 0; i < 5; i++ {
		if err := c.Admit(); err != nil {
			t.Fatalf("admit %d: %v", i, err)
		}
	}
	c.Dispatched(3) // queued 2, inflight 3

	if err := c.Admit(); err != nil { // 2+3 < 7
		t.Fatalf("admit under ceiling: %v", err)
	}
	if err := c.Admit(); err != nil { // 3+3 < 7
		t.Fatalf("admit under ceiling: %v", err)
	}
	err := c.Admit() // 4+3 = 7, at the ceiling with queue not full
	if !perr.IsCode(err, perr.ErrorCodeSaturated) {
		t.Fatalf("want saturated, got %v", err)
	}
}

func TestController_CountersReturnToZero(t *testing.T) {
	c := New(10, 10)
	for i := 0; i < 6; i++ {
		if err := c.Admit(); err != nil {
			t.Fatalf("admit: %v", err)
		}
	}
	c.Dispatched(4)
	c.Cancelled(2)
	c.Completed(4)

	if c.Queued() != 0 || c.InFlight() != 0 {
		t.Fatalf("queued=%d inflight=%d want 0/0", c.Queued(), c.InFlight())
	}
	if err := c.Admit(); err != nil {
		t.Fatalf("admit after drain: %v", err)
	}
}

func TestController_UnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on double release")
		}
	}()
	c := New(1, 1)
	c.Completed(1)
}

func TestController_PanicsOnBadLimits(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for zero limit")
		}
	}()
	New(0, 1)
}
