// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"bytes"
	"os"
	"sync"
	"time"

	"go.shapes.dev/interop/poll"
	"go.shapes.dev/interop/signals"
)

// scriptedWaiter hands out one scripted wakeup per Wait call. Once the
// script is exhausted it delivers a signal to cancel and reports it.
type scriptedWaiter struct {
	wakeups  [][]poll.Token
	cancel   *signals.Source
	timeouts []time.Duration
}

func (w *scriptedWaiter) Wait(timeout time.Duration) []poll.Token {
	w.timeouts = append(w.timeouts, timeout)
	if len(w.wakeups) == 0 {
		w.cancel.Deliver(os.Interrupt)
		return []poll.Token{StopProgram}
	}
	next := w.wakeups[0]
	w.wakeups = w.wakeups[1:]
	return next
}

func newScriptedLoop(role Role, out *bytes.Buffer, wakeups ...[]poll.Token) (*Loop, *scriptedWaiter) {
	cancel := signals.NewSource()
	waiter := &scriptedWaiter{wakeups: wakeups, cancel: cancel}
	return newLoop(waiter, cancel, role, out), waiter
}

// syncBuffer is written by the loop goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
