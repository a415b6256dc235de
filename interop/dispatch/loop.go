// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package dispatch runs the control loop of the shapes client.
//
// The loop owns all client state and runs on a single goroutine. It waits on
// the poller, handles every ready token of a wakeup in ascending order and
// hands anything that is not the cancellation source to the active role.
// Sources are edge triggered, so each handler drains its source until the
// source reports that nothing is left.
package dispatch

import (
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/poll"
)

// Tokens of the event sources the loop registers.
const (
	StopProgram poll.Token = 0
	ReaderReady poll.Token = 1
	StatusReady poll.Token = 2
)

// PublishInterval is the wait timeout of the publisher role, and so the
// cadence of shape updates when nothing else happens.
const PublishInterval = 200 * time.Millisecond

// Waiter is implemented by *poll.Poller.
type Waiter interface {
	Wait(timeout time.Duration) []poll.Token
}

// Registry is implemented by *poll.Poller.
type Registry interface {
	Register(source poll.Evented, token poll.Token)
}

// CancelSource is the one-shot cancellation channel, e.g. *signals.Source.
type CancelSource interface {
	poll.Evented
	TryRecv() (os.Signal, bool)
}

// Role is the publisher or subscriber half of the client.
type Role interface {
	// Register adds the sources of the role to r.
	Register(r Registry)
	// Timeout is how long a single wait may block.
	Timeout() time.Duration
	// Dispatch handles one ready token and reports whether the role owns it.
	Dispatch(token poll.Token) bool
	// AfterWakeup runs once after all tokens of a wakeup were dispatched,
	// including wakeups caused by the timeout. An error ends the loop.
	AfterWakeup() error
}

type Loop struct {
	waiter Waiter
	cancel CancelSource
	role   Role
	out    io.Writer
}

// NewLoop registers the cancellation source and the sources of role with
// poller.
func NewLoop(poller *poll.Poller, cancel CancelSource, role Role, out io.Writer) *Loop {
	poller.Register(cancel, StopProgram)
	role.Register(poller)
	return newLoop(poller, cancel, role, out)
}

func newLoop(waiter Waiter, cancel CancelSource, role Role, out io.Writer) *Loop {
	return &Loop{waiter: waiter, cancel: cancel, role: role, out: out}
}

// Run blocks until the cancellation source delivers or the role fails. It
// returns nil in the first case.
func (l *Loop) Run() error {
	for {
		for _, token := range l.waiter.Wait(l.role.Timeout()) {
			if token == StopProgram {
				if sig, ok := l.cancel.TryRecv(); ok {
					log.WithField("signal", sig).Debug("Cancellation consumed")
					fmt.Fprintln(l.out, "Done.")
					return nil
				}
				continue
			}

			if !l.role.Dispatch(token) {
				log.Warnf("Unexpected poll event %d", token)
			}
		}

		if err := l.role.AfterWakeup(); err != nil {
			return err
		}
	}
}
