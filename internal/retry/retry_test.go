package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, nil, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesServerErrors(t *testing.T) {
	calls := 0
	var retried []int
	err := Do(context.Background(), 3, time.Millisecond,
		func(attempt, max int, backoff time.Duration, err error) {
			retried = append(retried, attempt)
		},
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return statusErr(503)
			}
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retried) != 2 {
		t.Errorf("expected 2 retry callbacks, got %d", len(retried))
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 5, time.Millisecond, nil, func(ctx context.Context) error {
		calls++
		return statusErr(404)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call for 404, got %d", calls)
	}
}

func TestDo_SingleAttemptMeansNoRetry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 1, time.Millisecond, nil, func(ctx context.Context) error {
		calls++
		return statusErr(500)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, 5, time.Hour, nil, func(ctx context.Context) error {
		calls++
		cancel()
		return statusErr(502)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"500", statusErr(500), true},
		{"503 wrapped", fmt.Errorf("upstream: %w", statusErr(503)), true},
		{"404", statusErr(404), false},
		{"429", statusErr(429), false},
		{"canceled", context.Canceled, false},
		{"reset text", errors.New("read tcp: connection reset by peer"), true},
		{"plain", errors.New("boom"), false},
	}

	for _, tc := range testCases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Errorf("IsRetryable(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(statusErr(429)) {
		t.Error("expected 429 to be rate limited")
	}
	if IsRateLimited(statusErr(500)) {
		t.Error("expected 500 not to be rate limited")
	}
	if IsRateLimited(errors.New("status 429")) {
		t.Error("expected plain text error not to be rate limited")
	}
}
