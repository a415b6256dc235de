// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package dds

import (
	"sync"
	"time"
)

// DeadlineMonitor queues a missed-deadline status every time an instance goes
// a whole period without being observed. A nil monitor ignores all calls, so
// entities without a deadline can hold one unconditionally.
type DeadlineMonitor struct {
	mu       sync.Mutex
	period   time.Duration
	kind     StatusKind
	statuses *StatusQueue
	timers   map[string]*deadlineTimer
	total    int32
	stopped  bool
}

type deadlineTimer struct {
	*time.Timer
	// start of the current period
	since time.Time
}

// NewDeadlineMonitor returns nil when period is not positive.
func NewDeadlineMonitor(period time.Duration, kind StatusKind, statuses *StatusQueue) *DeadlineMonitor {
	if period <= 0 {
		return nil
	}
	return &DeadlineMonitor{
		period:   period,
		kind:     kind,
		statuses: statuses,
		timers:   make(map[string]*deadlineTimer),
	}
}

// Observe restarts the deadline period of key.
func (m *DeadlineMonitor) Observe(key string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	if t, ok := m.timers[key]; ok {
		t.since = time.Now()
		t.Reset(m.period)
		return
	}
	m.timers[key] = &deadlineTimer{
		Timer: time.AfterFunc(m.period, func() { m.missed(key) }),
		since: time.Now(),
	}
}

func (m *DeadlineMonitor) missed(key string) {
	m.mu.Lock()
	t, ok := m.timers[key]
	// an Observe raced with this callback and already restarted the period
	if m.stopped || !ok || time.Since(t.since) < m.period {
		m.mu.Unlock()
		return
	}
	m.total++
	t.since = time.Now()
	status := Status{Kind: m.kind, TotalCount: m.total, Key: key}
	t.Reset(m.period)
	m.mu.Unlock()

	m.statuses.Push(status)
}

// Forget stops watching key, e.g. after the instance was disposed.
func (m *DeadlineMonitor) Forget(key string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.timers[key]; ok {
		t.Stop()
		delete(m.timers, key)
	}
}

func (m *DeadlineMonitor) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	for key, t := range m.timers {
		t.Stop()
		delete(m.timers, key)
	}
}
