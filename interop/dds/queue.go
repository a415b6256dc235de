// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package dds

import (
	"sync"

	"go.shapes.dev/interop/model"
	"go.shapes.dev/interop/poll"
)

// SampleQueue holds samples received by a reader until they are taken.
// With a KeepLast history only the newest Depth values of each instance are
// kept; withdrawals are never dropped.
type SampleQueue struct {
	poll.Notifier
	mu      sync.Mutex
	history History
	items   []model.Sample
}

var _ poll.Evented = (*SampleQueue)(nil)

func NewSampleQueue(history History) *SampleQueue {
	if history.Kind == KeepLast && history.Depth < 1 {
		history.Depth = 1
	}
	return &SampleQueue{history: history}
}

func (q *SampleQueue) SetReadyFunc(ready func()) {
	q.Notifier.SetReadyFunc(ready)
	if q.Len() > 0 {
		q.Notify()
	}
}

// Push appends s and reports readiness.
func (q *SampleQueue) Push(s model.Sample) {
	q.mu.Lock()
	q.items = append(q.items, s)
	if _, isValue := s.(model.Value); isValue && q.history.Kind == KeepLast {
		q.trim(s.InstanceKey())
	}
	q.mu.Unlock()

	q.Notify()
}

func (q *SampleQueue) trim(key string) {
	values := 0
	for _, item := range q.items {
		if _, isValue := item.(model.Value); isValue && item.InstanceKey() == key {
			values++
		}
	}

	excess := values - int(q.history.Depth)
	if excess <= 0 {
		return
	}
	kept := q.items[:0]
	for _, item := range q.items {
		if _, isValue := item.(model.Value); isValue && excess > 0 && item.InstanceKey() == key {
			excess--
			continue
		}
		kept = append(kept, item)
	}
	clear(q.items[len(kept):])
	q.items = kept
}

// Pop removes the oldest sample. It returns false when the queue is empty.
func (q *SampleQueue) Pop() (model.Sample, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	s := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return s, true
}

func (q *SampleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// StatusQueue is the FIFO of statuses a reader or writer has not yet
// reported.
type StatusQueue struct {
	poll.Notifier
	mu     sync.Mutex
	items  []Status
	closed bool
}

var _ poll.Evented = (*StatusQueue)(nil)

func NewStatusQueue() *StatusQueue {
	return &StatusQueue{}
}

func (q *StatusQueue) SetReadyFunc(ready func()) {
	q.Notifier.SetReadyFunc(ready)

	q.mu.Lock()
	pending := len(q.items) > 0
	q.mu.Unlock()
	if pending {
		q.Notify()
	}
}

// Push queues s and reports readiness. Statuses pushed after Close are
// dropped.
func (q *StatusQueue) Push(s Status) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, s)
	q.mu.Unlock()

	q.Notify()
}

func (q *StatusQueue) TryRecv() (*Status, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		if q.closed {
			return nil, ErrClosed
		}
		return nil, nil
	}
	s := q.items[0]
	q.items = q.items[1:]
	return &s, nil
}

func (q *StatusQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
