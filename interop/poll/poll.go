// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package poll multiplexes readiness notifications from several event sources
// into a single wait call.
//
// Sources are registered once under a token. A source signals readiness by
// calling the function it was handed at registration; that call is safe from
// any goroutine and never blocks. Readiness is edge triggered: a token is
// reported once per batch of notifications, and the owner of the loop is
// expected to drain the source until it reports that nothing is pending.
package poll

import (
	"sort"
	"sync"
	"time"

	"go.shapes.dev/interop/invariant"
)

// Token identifies a registered event source.
type Token int

// Forever makes Wait block until at least one source is ready.
const Forever time.Duration = -1

// Evented is implemented by anything that can report readiness. SetReadyFunc
// is called once at registration; a source that already has pending events
// should call ready straight away.
type Evented interface {
	SetReadyFunc(ready func())
}

// Poller is the registry of event sources together with the wait primitive.
type Poller struct {
	mu         sync.Mutex
	registered map[Token]Evented
	pending    map[Token]struct{}
	wake       chan struct{}
}

func NewPoller() *Poller {
	return &Poller{
		registered: make(map[Token]Evented),
		pending:    make(map[Token]struct{}),
		wake:       make(chan struct{}, 1),
	}
}

// Register associates source with token. Registering the same token twice is
// a programming error.
func (p *Poller) Register(source Evented, token Token) {
	p.mu.Lock()
	_, taken := p.registered[token]
	if !taken {
		p.registered[token] = source
	}
	p.mu.Unlock()

	invariant.Checkf(!taken, "poll token %d registered twice", token)

	source.SetReadyFunc(func() { p.notify(token) })
}

func (p *Poller) notify(token Token) {
	p.mu.Lock()
	p.pending[token] = struct{}{}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Wait blocks until a registered source is ready or the timeout expires and
// returns the ready tokens in ascending order. An empty result means the
// timeout expired. Pass Forever to wait without a timeout.
func (p *Poller) Wait(timeout time.Duration) []Token {
	if ready := p.takePending(); len(ready) > 0 {
		return ready
	}

	var expired <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-p.wake:
			if ready := p.takePending(); len(ready) > 0 {
				return ready
			}
		case <-expired:
			return p.takePending()
		}
	}
}

func (p *Poller) takePending() []Token {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) == 0 {
		return nil
	}
	ready := make([]Token, 0, len(p.pending))
	for token := range p.pending {
		ready = append(ready, token)
	}
	clear(p.pending)

	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
	return ready
}
