package offers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestShouldRetryRespectsBudget(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(3, time.Millisecond, time.Second)
	err := errors.New("transient")

	if !p.ShouldRetry(err, 0) {
		t.Fatal("expected retry on first attempt")
	}
	if p.ShouldRetry(err, 3) {
		t.Fatal("expected no retry once attempts are exhausted")
	}
	if p.ShouldRetry(nil, 0) {
		t.Fatal("expected no retry on nil error")
	}
}

func TestShouldRetryContextErrors(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(3, time.Millisecond, time.Second)
	if p.ShouldRetry(context.Canceled, 0) {
		t.Fatal("expected no retry on canceled context")
	}
	if p.ShouldRetry(context.DeadlineExceeded, 0) {
		t.Fatal("expected no retry on deadline exceeded")
	}
}

func TestShouldRetryFetchErrorKinds(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(3, time.Millisecond, time.Second)

	retryable := []FetchErrorKind{FetchNetwork, FetchTimeout, FetchBlocked}
	for _, kind := range retryable {
		err := &FetchError{Kind: kind, URL: "https://example.com", Err: errors.New("boom")}
		if !p.ShouldRetry(err, 1) {
			t.Errorf("expected %s to be retryable", kind)
		}
	}

	notFound := &FetchError{Kind: FetchNotFound, URL: "https://example.com", Err: errors.New("gone")}
	if p.ShouldRetry(notFound, 0) {
		t.Fatal("expected not_found to be terminal")
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	t.Parallel()

	base := 100 * time.Millisecond
	maxDelay := 400 * time.Millisecond
	p := NewExponentialRetryPolicy(5, base, maxDelay)

	for attempt := 0; attempt < 5; attempt++ {
		d := p.Backoff(attempt)
		if d <= 0 {
			t.Fatalf("attempt %d: backoff must be positive, got %v", attempt, d)
		}
		if d > maxDelay {
			t.Fatalf("attempt %d: backoff %v exceeds cap %v", attempt, d, maxDelay)
		}
	}
}

func TestFetchKind(t *testing.T) {
	t.Parallel()

	err := &FetchError{Kind: FetchBlocked, URL: "https://example.com", StatusCode: 403, Err: errors.New("challenge")}
	wrapped := errors.Join(errors.New("outer"), err)

	if got := FetchKind(wrapped); got != FetchBlocked {
		t.Fatalf("FetchKind() = %q, want %q", got, FetchBlocked)
	}
	if got := FetchKind(errors.New("plain")); got != "" {
		t.Fatalf("FetchKind(plain) = %q, want empty", got)
	}
}
