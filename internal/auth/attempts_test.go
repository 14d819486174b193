// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package auth

import (
	"testing"
	"time"
)

func TestAttemptTrackerLocksAfterMax(t *testing.T) {
	tracker := NewAttemptTracker(5, 15*time.Minute)

	for i := 0; i < 4; i++ {
		tracker.RecordFailure("10.0.0.1")
		if tracker.Locked("10.0.0.1") {
			t.Fatalf("should not be locked after %d failures", i+1)
		}
	}

	tracker.RecordFailure("10.0.0.1")
	if !tracker.Locked("10.0.0.1") {
		t.Error("should be locked after 5 failures")
	}

	// Other IPs are unaffected.
	if tracker.Locked("10.0.0.2") {
		t.Error("unrelated IP should not be locked")
	}
}

func TestAttemptTrackerReset(t *testing.T) {
	tracker := NewAttemptTracker(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		tracker.RecordFailure("10.0.0.1")
	}
	tracker.Reset("10.0.0.1")

	if tracker.Locked("10.0.0.1") {
		t.Error("reset should clear the lockout")
	}
	if got := tracker.Remaining("10.0.0.1"); got != 5 {
		t.Errorf("Remaining = %d, want 5 after reset", got)
	}
}

func TestAttemptTrackerWindowExpiry(t *testing.T) {
	tracker := NewAttemptTracker(5, 15*time.Minute)

	base := time.Now()
	tracker.now = func() time.Time { return base }

	for i := 0; i < 5; i++ {
		tracker.RecordFailure("10.0.0.1")
	}
	if !tracker.Locked("10.0.0.1") {
		t.Fatal("should be locked")
	}

	// Still locked just inside the window.
	tracker.now = func() time.Time { return base.Add(14 * time.Minute) }
	if !tracker.Locked("10.0.0.1") {
		t.Error("should still be locked at 14 minutes")
	}

	// A quiet window clears the record.
	tracker.now = func() time.Time { return base.Add(16 * time.Minute) }
	if tracker.Locked("10.0.0.1") {
		t.Error("lockout should expire after the window")
	}
}

func TestAttemptTrackerFailureAfterQuietWindowStartsFresh(t *testing.T) {
	tracker := NewAttemptTracker(5, 15*time.Minute)

	base := time.Now()
	tracker.now = func() time.Time { return base }

	for i := 0; i < 4; i++ {
		tracker.RecordFailure("10.0.0.1")
	}

	tracker.now = func() time.Time { return base.Add(16 * time.Minute) }
	tracker.RecordFailure("10.0.0.1")

	if got := tracker.Remaining("10.0.0.1"); got != 4 {
		t.Errorf("Remaining = %d, want 4 after window reset", got)
	}
}

func TestAttemptTrackerCleanup(t *testing.T) {
	tracker := NewAttemptTracker(5, 15*time.Minute)

	base := time.Now()
	tracker.now = func() time.Time { return base }

	tracker.RecordFailure("10.0.0.1")
	tracker.RecordFailure("10.0.0.2")
	if got := tracker.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}

	tracker.now = func() time.Time { return base.Add(16 * time.Minute) }
	tracker.RecordFailure("10.0.0.3")

	if evicted := tracker.cleanup(); evicted != 2 {
		t.Errorf("cleanup evicted %d entries, want 2", evicted)
	}
	if got := tracker.Len(); got != 1 {
		t.Errorf("Len = %d after cleanup, want 1", got)
	}
}
