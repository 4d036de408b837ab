package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestViewScopeNothingFiresAfterClose(t *testing.T) {
	scope := NewViewScope(context.Background(), "test")

	var fired int32
	scope.After(30*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	scope.Every(5*time.Millisecond, func() bool {
		atomic.AddInt32(&fired, 1)
		return true
	})

	scope.Close()
	snapshot := atomic.LoadInt32(&fired)
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != snapshot {
		t.Errorf("callbacks fired after Close: %d -> %d", snapshot, got)
	}
	if scope.After(time.Millisecond, func() {}) {
		t.Errorf("After on a closed scope should report false")
	}
}

func TestViewScopeEveryStopsWhenFalse(t *testing.T) {
	scope := NewViewScope(context.Background(), "test")
	defer scope.Close()

	var ticks int32
	scope.Every(2*time.Millisecond, func() bool {
		return atomic.AddInt32(&ticks, 1) < 3
	})

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&ticks); got != 3 {
		t.Errorf("ticks = %d, want 3", got)
	}
}

func TestLandingSecondClickSkips(t *testing.T) {
	v := NewLandingView(context.Background(), LandingConfig{
		RedirectAfter: time.Hour,
		TickInterval:  time.Hour,
		Step:          1.25,
	})
	defer v.Close()

	if v.Skip() {
		t.Fatalf("first click must not redirect")
	}
	if !v.Skip() {
		t.Fatalf("second click should redirect")
	}

	update := <-v.Updates()
	if update.Status != "redirect" || update.Redirect != "/dashboard" || update.Reason != "skip" {
		t.Errorf("update = %+v", update)
	}
	if v.Skip() {
		t.Errorf("redirect must happen only once")
	}
}

func TestLandingTimeoutRedirect(t *testing.T) {
	v := NewLandingView(context.Background(), LandingConfig{
		RedirectAfter: 40 * time.Millisecond,
		TickInterval:  time.Millisecond,
		Step:          50,
		Target:        "/next",
	})
	defer v.Close()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-v.Updates():
			if u.Progress > 100 {
				t.Fatalf("progress overflow: %v", u.Progress)
			}
			if u.Status == "redirect" {
				if u.Redirect != "/next" || u.Reason != "timeout" {
					t.Errorf("update = %+v", u)
				}
				if v.Progress() != 100 {
					t.Errorf("progress = %v, want 100", v.Progress())
				}
				return
			}
		case <-deadline:
			t.Fatal("no redirect before deadline")
		}
	}
}
