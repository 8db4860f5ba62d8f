package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestBreakerOpensAfterFailures(t *testing.T) {
	b := New(Settings{FailureThreshold: 3, SuccessThreshold: 1, Timeout: time.Minute})

	fail := func() error { return errBoom }
	for i := 0; i < 3; i++ {
		if err := b.Do(fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %s, want open", got)
	}
	if err := b.Do(fail); !errors.Is(err, ErrOpen) {
		t.Errorf("open breaker returned %v, want ErrOpen", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New(Settings{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute})

	_ = b.Do(func() error { return errBoom })
	_ = b.Do(func() error { return nil })
	_ = b.Do(func() error { return errBoom })

	if got := b.State(); got != StateClosed {
		t.Errorf("state = %s, want closed after interleaved success", got)
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := New(Settings{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 10 * time.Millisecond})

	_ = b.Do(func() error { return errBoom })
	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %s, want open", got)
	}

	time.Sleep(15 * time.Millisecond)
	if got := b.State(); got != StateHalfOpen {
		t.Fatalf("state = %s, want half-open after timeout", got)
	}

	ok := func() error { return nil }
	if err := b.Do(ok); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if got := b.State(); got != StateHalfOpen {
		t.Fatalf("state = %s, want half-open before success threshold", got)
	}
	if err := b.Do(ok); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if got := b.State(); got != StateClosed {
		t.Errorf("state = %s, want closed after recovery", got)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := New(Settings{FailureThreshold: 1, SuccessThreshold: 1, Timeout: 10 * time.Millisecond})

	_ = b.Do(func() error { return errBoom })
	time.Sleep(15 * time.Millisecond)

	if err := b.Do(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("probe returned %v", err)
	}
	if got := b.State(); got != StateOpen {
		t.Errorf("state = %s, want open after failed probe", got)
	}
}
