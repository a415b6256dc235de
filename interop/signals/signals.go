// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package signals turns process signals into a one-shot cancellation source
// that the control loop polls like any other event source.
package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/poll"
)

// DoubleStopExitCode is used when a second signal arrives while the first
// one is still being handled.
const DoubleStopExitCode = 1

var (
	osExit   = os.Exit
	exitFunc = osExit
)

// Default returns the signals that stop the client.
func Default() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// Source is a single-slot cancellation channel. Only the first delivery is
// kept; later deliveries before it is consumed are dropped.
type Source struct {
	poll.Notifier
	slot chan os.Signal
	stop func()
}

var _ poll.Evented = (*Source)(nil)

// NewSource returns a source that is only fed through Deliver.
func NewSource() *Source {
	return &Source{slot: make(chan os.Signal, 1), stop: func() {}}
}

// ShutdownOnSignals returns a source fed by the given OS signals, or the
// default ones if none are given. A second signal terminates the process.
func ShutdownOnSignals(signals ...os.Signal) *Source {
	if len(signals) == 0 {
		signals = Default()
	}

	s := NewSource()
	// buffer of two so that we don't drop the first two signals
	ch := make(chan os.Signal, 2)
	done := make(chan struct{})
	signal.Notify(ch, signals...)
	s.stop = sync.OnceFunc(func() {
		signal.Stop(ch)
		close(done)
	})

	go func() {
		select {
		case sig := <-ch:
			log.WithField("signal", sig.String()).Info("Received signal")
			s.Deliver(sig)
		case <-done:
			return
		}
		select {
		case sig := <-ch:
			log.WithField("signal", sig.String()).Warn("Received second signal, exiting")
			exitFunc(DoubleStopExitCode)
		case <-done:
		}
	}()
	return s
}

// SetReadyFunc registers ready and reports readiness at once when a signal
// arrived before registration.
func (s *Source) SetReadyFunc(ready func()) {
	s.Notifier.SetReadyFunc(ready)
	if len(s.slot) > 0 {
		s.Notify()
	}
}

// Deliver puts sig in the slot, if empty, and reports readiness.
func (s *Source) Deliver(sig os.Signal) {
	select {
	case s.slot <- sig:
	default:
	}
	s.Notify()
}

// TryRecv consumes the pending signal without blocking. It reports false
// when there is nothing to consume.
func (s *Source) TryRecv() (os.Signal, bool) {
	select {
	case sig := <-s.slot:
		return sig, true
	default:
		return nil, false
	}
}

// Stop detaches the source from OS signal delivery. It may be called more
// than once.
func (s *Source) Stop() {
	s.stop()
}
