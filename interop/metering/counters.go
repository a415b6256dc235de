// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metering counts what the control loop did. The loop is the only
// writer; the status API reads snapshots from another goroutine.
package metering

import (
	"sync/atomic"
	"time"

	"go.shapes.dev/interop/model"
)

type Counters struct {
	startNs int64

	published  atomic.Uint64
	received   atomic.Uint64
	disposed   atomic.Uint64
	filtered   atomic.Uint64
	takeErrors atomic.Uint64
	statuses   atomic.Uint64
	lastShape  atomic.Pointer[model.Shape]
	lastEvent  atomic.Int64
}

func NewCounters() *Counters {
	return &Counters{startNs: Monotime()}
}

func (c *Counters) Published(s model.Shape) {
	c.published.Add(1)
	c.lastShape.Store(&s)
	c.touch()
}

func (c *Counters) Received(s model.Shape) {
	c.received.Add(1)
	c.lastShape.Store(&s)
	c.touch()
}

func (c *Counters) Disposed() {
	c.disposed.Add(1)
	c.touch()
}

// Filtered counts samples that were taken but not printed.
func (c *Counters) Filtered() {
	c.filtered.Add(1)
	c.touch()
}

func (c *Counters) TakeError() {
	c.takeErrors.Add(1)
	c.touch()
}

func (c *Counters) Status() {
	c.statuses.Add(1)
	c.touch()
}

func (c *Counters) touch() {
	c.lastEvent.Store(Monotime())
}

// Snapshot is a point in time copy of the counters.
type Snapshot struct {
	UptimeMs    int64        `json:"uptimeMs"`
	Published   uint64       `json:"published"`
	Received    uint64       `json:"received"`
	Disposed    uint64       `json:"disposed"`
	Filtered    uint64       `json:"filtered"`
	TakeErrors  uint64       `json:"takeErrors"`
	Statuses    uint64       `json:"statuses"`
	LastShape   *model.Shape `json:"lastShape,omitempty"`
	LastEventAt *time.Time   `json:"lastEventAt,omitempty"`
}

func (c *Counters) Snapshot() Snapshot {
	now := Monotime()
	s := Snapshot{
		UptimeMs:   (now - c.startNs) / time.Millisecond.Nanoseconds(),
		Published:  c.published.Load(),
		Received:   c.received.Load(),
		Disposed:   c.disposed.Load(),
		Filtered:   c.filtered.Load(),
		TakeErrors: c.takeErrors.Load(),
		Statuses:   c.statuses.Load(),
	}
	if shape := c.lastShape.Load(); shape != nil {
		copied := *shape
		s.LastShape = &copied
	}
	if last := c.lastEvent.Load(); last != 0 {
		at := time.Unix(0, MonoToEpoch(last)).UTC()
		s.LastEventAt = &at
	}
	return s
}
