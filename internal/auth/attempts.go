// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/crumbcoat/crumbcoat/internal/logging"
)

// attemptEntry tracks failed logins from one client IP.
type attemptEntry struct {
	count int
	last  time.Time
}

// AttemptTracker throttles login attempts per client IP. A counter resets
// after a quiet window; hitting the ceiling locks the IP out until the
// window passes. Stale entries are evicted by a background cleanup loop
// so the map cannot grow unboundedly under scanning traffic.
type AttemptTracker struct {
	mu      sync.Mutex
	entries map[string]*attemptEntry

	max    int
	window time.Duration

	now func() time.Time
}

// NewAttemptTracker creates a tracker allowing max failures per window.
func NewAttemptTracker(max int, window time.Duration) *AttemptTracker {
	return &AttemptTracker{
		entries: make(map[string]*attemptEntry),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// Locked reports whether the IP has exhausted its attempts. An entry whose
// window has passed is treated as fresh.
func (t *AttemptTracker) Locked(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[ip]
	if !ok {
		return false
	}
	if t.now().Sub(entry.last) > t.window {
		delete(t.entries, ip)
		return false
	}
	return entry.count >= t.max
}

// RecordFailure counts one failed login for the IP.
func (t *AttemptTracker) RecordFailure(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	entry, ok := t.entries[ip]
	if !ok || now.Sub(entry.last) > t.window {
		t.entries[ip] = &attemptEntry{count: 1, last: now}
		return
	}
	entry.count++
	entry.last = now
}

// Reset clears the attempt record for the IP. Called on successful login.
func (t *AttemptTracker) Reset(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, ip)
}

// Remaining returns how many attempts the IP has left in the current
// window.
func (t *AttemptTracker) Remaining(ip string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[ip]
	if !ok || t.now().Sub(entry.last) > t.window {
		return t.max
	}
	if entry.count >= t.max {
		return 0
	}
	return t.max - entry.count
}

// Len returns the number of tracked IPs.
func (t *AttemptTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// StartCleanup runs a background eviction loop until ctx is canceled.
func (t *AttemptTracker) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if evicted := t.cleanup(); evicted > 0 {
					logging.Debug().Int("evicted", evicted).Msg("Evicted stale login attempt records")
				}
			}
		}
	}()
}

// cleanup removes entries whose window has passed and returns how many
// were evicted.
func (t *AttemptTracker) cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	evicted := 0
	for ip, entry := range t.entries {
		if now.Sub(entry.last) > t.window {
			delete(t.entries, ip)
			evicted++
		}
	}
	return evicted
}
