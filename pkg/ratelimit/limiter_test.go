package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, 200*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !sw.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if sw.Allow() {
		t.Error("Expected request to be denied when limit is reached")
	}

	time.Sleep(250 * time.Millisecond)
	if !sw.Allow() {
		t.Error("Expected request to be allowed after window slides")
	}

	sw.Reset()
	if len(sw.requests) != 0 {
		t.Error("Expected requests to be cleared after reset")
	}
}

func TestSlidingWindowWait(t *testing.T) {
	sw := NewSlidingWindow(2, 100*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := sw.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("Third request should wait for the window to slide, elapsed %v", elapsed)
	}
}

func TestSlidingWindowWaitCancelled(t *testing.T) {
	sw := NewSlidingWindow(1, time.Hour)
	sw.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := sw.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestPerSecond(t *testing.T) {
	if PerSecond(0) != nil {
		t.Error("Expected nil limiter for non-positive rate")
	}
	if PerSecond(3) == nil {
		t.Error("Expected a limiter for positive rate")
	}
}
