package pipeline

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dgallion1/frontmark/internal/notify"
)

func TestJobStats_EmptySnapshot(t *testing.T) {
	s := NewJobStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 {
		t.Errorf("expected empty snapshot, got count=%d", snap.Count)
	}
}

func TestJobStats_SingleSample(t *testing.T) {
	s := NewJobStats(time.Hour)
	s.Record(100)

	snap := s.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected 1 sample, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 100 {
		t.Errorf("expected min=max=100, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 100 {
		t.Errorf("expected avg=100, got %f", snap.AvgMs)
	}
}

func TestJobStats_Percentiles(t *testing.T) {
	s := NewJobStats(time.Hour)
	for i := int64(1); i <= 100; i++ {
		s.Record(i * 10)
	}

	snap := s.Snapshot()
	if snap.Count != 100 {
		t.Fatalf("expected 100 samples, got %d", snap.Count)
	}
	if snap.MinMs != 10 || snap.MaxMs != 1000 {
		t.Errorf("expected min=10 max=1000, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.P50Ms < 400 || snap.P50Ms > 600 {
		t.Errorf("expected p50 near 500, got %f", snap.P50Ms)
	}
	if snap.P95Ms < 900 || snap.P95Ms > 1000 {
		t.Errorf("expected p95 near 950, got %f", snap.P95Ms)
	}
	if snap.P99Ms < snap.P95Ms {
		t.Errorf("expected p99 >= p95, got p99=%f p95=%f", snap.P99Ms, snap.P95Ms)
	}
}

func TestJobStats_NegativeDurationClamped(t *testing.T) {
	s := NewJobStats(time.Hour)
	s.Record(-5)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("expected negative duration clamped to 0, got %d", snap.MinMs)
	}
}

func TestJobStats_WindowPruning(t *testing.T) {
	s := NewJobStats(50 * time.Millisecond)
	s.Record(100)
	time.Sleep(100 * time.Millisecond)
	s.Record(200)

	snap := s.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected old sample pruned, got count=%d", snap.Count)
	}
	if snap.MinMs != 200 {
		t.Errorf("expected surviving sample 200, got %d", snap.MinMs)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&notify.RetryableError{StatusCode: 503}) {
		t.Error("expected RetryableError to be retryable")
	}
	wrapped := fmt.Errorf("send: %w", &notify.RetryableError{StatusCode: 429})
	if !IsRetryable(wrapped) {
		t.Error("expected wrapped RetryableError to be retryable")
	}
	if IsRetryable(errors.New("permanent")) {
		t.Error("expected plain error to be non-retryable")
	}
	if IsRetryable(nil) {
		t.Error("expected nil to be non-retryable")
	}
}

func TestBackoff_GrowsWithAttempts(t *testing.T) {
	for attempt := range MaxRetries {
		d := Backoff(attempt)
		base := time.Duration(1<<uint(attempt)) * time.Second
		if d < base {
			t.Errorf("attempt %d: backoff %v below base %v", attempt, d, base)
		}
		if d > base+base/2 {
			t.Errorf("attempt %d: backoff %v exceeds base plus jitter", attempt, d)
		}
	}
}
