package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"opentrade/internal/errors"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, Delay: time.Millisecond}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestDoRetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.NewTransient("llm", stderrors.New("timeout"))
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want ok", got)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestDoExhaustsTransientRetries(t *testing.T) {
	calls := 0
	transient := errors.NewTransient("fetch", stderrors.New("connection refused"))
	_, err := Do(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		return 0, transient
	})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
	if !stderrors.Is(err, transient) {
		t.Errorf("expected last error to be returned, got %v", err)
	}
}

func TestDoPermanentNotRetried(t *testing.T) {
	calls := 0
	permanent := errors.NewPermanent("llm", stderrors.New("invalid api key"))
	_, err := Do(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		return 0, permanent
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("permanent errors must not be retried: got %d calls, want 1", calls)
	}
}

func TestDoUnclassifiedErrorTreatedAsTransient(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(2), func() (int, error) {
		calls++
		return 0, stderrors.New("plain failure")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Errorf("got %d calls, want 2", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Do(ctx, RetryConfig{MaxAttempts: 3, Delay: time.Second}, func() (int, error) {
		calls++
		return 0, stderrors.New("fail")
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled between attempts, got %v", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}
