package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		Multiplier:      2.0,
		JitterFactor:    0,
	}
}

func TestDo_Success(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), testConfig(3), func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Do() error = %v, want nil", err)
	}
	if attempts != 1 {
		t.Errorf("operation called %d times, want 1", attempts)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), testConfig(5), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("operation called %d times, want 3", attempts)
	}
}

func TestDo_MaxRetriesExceeded(t *testing.T) {
	attempts := 0
	persistent := errors.New("persistent error")
	err := Do(context.Background(), testConfig(3), func(ctx context.Context) error {
		attempts++
		return persistent
	})

	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Errorf("Do() error = %v, want ErrMaxRetriesExceeded", err)
	}
	if !errors.Is(err, persistent) {
		t.Errorf("Do() error should wrap the last operation error, got %v", err)
	}
	// Initial attempt + 3 retries = 4 total
	if attempts != 4 {
		t.Errorf("operation called %d times, want 4", attempts)
	}
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	attempts := 0
	permErr := errors.New("bad credentials")
	err := Do(context.Background(), testConfig(5), func(ctx context.Context) error {
		attempts++
		return Permanent(permErr)
	})

	if !errors.Is(err, permErr) {
		t.Errorf("Do() error = %v, want %v", err, permErr)
	}
	if attempts != 1 {
		t.Errorf("operation called %d times, want 1", attempts)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := Do(ctx, &Config{
		MaxRetries:      10,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
	}, func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("still failing")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if attempts < 2 {
		t.Errorf("operation called %d times, want >= 2", attempts)
	}
}

func TestDo_NilConfigUsesDefaults(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), nil, func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Do() error = %v, want nil", err)
	}
	if attempts != 1 {
		t.Errorf("operation called %d times, want 1", attempts)
	}
}

func TestPermanent_NilStaysNil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should return nil")
	}
}

func TestInterval_ExponentialBackoffCapped(t *testing.T) {
	cfg := &Config{
		InitialInterval: time.Second,
		MaxInterval:     8 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 8 * time.Second}, // capped
	}

	for _, tt := range tests {
		if got := interval(cfg, tt.attempt); got != tt.expected {
			t.Errorf("interval(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestInterval_JitterStaysInBounds(t *testing.T) {
	cfg := &Config{
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}

	min := time.Duration(float64(time.Second) * 0.9)
	max := time.Duration(float64(time.Second) * 1.1)
	for i := 0; i < 100; i++ {
		if got := interval(cfg, 1); got < min || got > max {
			t.Fatalf("interval(1) = %v, want between %v and %v", got, min, max)
		}
	}
}
