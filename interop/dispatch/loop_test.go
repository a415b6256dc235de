// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.shapes.dev/interop/dds"
	"go.shapes.dev/interop/dds/loopback"
	"go.shapes.dev/interop/invariant"
	"go.shapes.dev/interop/metering"
	"go.shapes.dev/interop/model"
	"go.shapes.dev/interop/poll"
	"go.shapes.dev/interop/signals"
)

// recordingRole remembers what the loop asked of it.
type recordingRole struct {
	timeout    time.Duration
	dispatched []poll.Token
	wakeups    int
	owned      map[poll.Token]bool
}

func (r *recordingRole) Register(Registry)      {}
func (r *recordingRole) Timeout() time.Duration { return r.timeout }
func (r *recordingRole) AfterWakeup() error     { r.wakeups++; return nil }

func (r *recordingRole) Dispatch(token poll.Token) bool {
	r.dispatched = append(r.dispatched, token)
	return r.owned[token]
}

func TestLoopDispatchesTokensInOrder(t *testing.T) {
	role := &recordingRole{timeout: time.Second, owned: map[poll.Token]bool{ReaderReady: true, StatusReady: true}}
	var out bytes.Buffer
	loop, waiter := newScriptedLoop(role, &out,
		[]poll.Token{ReaderReady, StatusReady},
		[]poll.Token{},
		[]poll.Token{StatusReady},
	)

	require.NoError(t, loop.Run())

	assert.Equal(t, []poll.Token{ReaderReady, StatusReady, StatusReady}, role.dispatched)
	assert.Equal(t, 3, role.wakeups)
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second, time.Second}, waiter.timeouts)
	assert.Equal(t, "Done.\n", out.String())
}

func TestLoopSurvivesUnexpectedTokens(t *testing.T) {
	role := &recordingRole{owned: map[poll.Token]bool{}}
	var out bytes.Buffer
	loop, _ := newScriptedLoop(role, &out, []poll.Token{poll.Token(9)})

	require.NoError(t, loop.Run())

	assert.Equal(t, []poll.Token{poll.Token(9)}, role.dispatched)
	assert.Equal(t, "Done.\n", out.String())
}

func TestLoopIgnoresSpuriousCancellation(t *testing.T) {
	role := &recordingRole{owned: map[poll.Token]bool{}}
	var out bytes.Buffer
	// nothing was delivered yet: the token alone must not stop the loop
	loop, _ := newScriptedLoop(role, &out, []poll.Token{StopProgram}, []poll.Token{StopProgram})

	require.NoError(t, loop.Run())

	assert.Equal(t, 2, role.wakeups)
	assert.Empty(t, role.dispatched)
	assert.Equal(t, 1, strings.Count(out.String(), "Done."))
}

func TestLoopStopsBeforeRemainingTokens(t *testing.T) {
	role := &recordingRole{owned: map[poll.Token]bool{StatusReady: true}}
	cancel := signals.NewSource()
	cancel.Deliver(os.Interrupt)
	cancel.Deliver(os.Interrupt)
	waiter := &scriptedWaiter{wakeups: [][]poll.Token{{StopProgram, StatusReady}}, cancel: cancel}
	var out bytes.Buffer

	require.NoError(t, newLoop(waiter, cancel, role, &out).Run())

	assert.Empty(t, role.dispatched)
	assert.Zero(t, role.wakeups)
	assert.Equal(t, "Done.\n", out.String())
	_, pending := cancel.TryRecv()
	assert.False(t, pending)
}

func TestLoopObservesCancellationDeliveredBeforeRegistration(t *testing.T) {
	role := &recordingRole{timeout: 50 * time.Millisecond, owned: map[poll.Token]bool{}}
	cancel := signals.NewSource()
	cancel.Deliver(os.Interrupt)
	out := &syncBuffer{}

	loop := NewLoop(poll.NewPoller(), cancel, role, out)
	done := make(chan error, 1)
	go func() { done <- loop.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not observe the pending cancellation")
	}
	assert.Equal(t, "Done.\n", out.String())
	assert.Zero(t, role.wakeups)
}

func TestNewLoopRejectsDuplicateRegistration(t *testing.T) {
	prev := invariant.SetViolationExecutor(invariant.NewPanicViolationExecutor())
	defer invariant.SetViolationExecutor(prev)

	poller := poll.NewPoller()
	poller.Register(signals.NewSource(), ReaderReady)
	reader := &loopback.DataReader{}

	assert.Panics(t, func() {
		NewLoop(poller, signals.NewSource(), NewSubscriber(reader, "Square", "", metering.NewCounters(), &bytes.Buffer{}), &bytes.Buffer{})
	})
}

func newLoopbackPair(t *testing.T, qos dds.QosPolicies) (dds.DataWriter, dds.DataReader) {
	t.Helper()
	domain := loopback.NewDomain()
	pub := domain.NewParticipant(0)
	sub := domain.NewParticipant(0)
	t.Cleanup(func() {
		pub.Close()
		sub.Close()
	})

	topic, err := pub.CreateTopic("Square", model.ShapeTypeName, qos)
	require.NoError(t, err)
	w, err := pub.CreateDataWriter(topic, qos)
	require.NoError(t, err)
	r, err := sub.CreateDataReader(topic, qos)
	require.NoError(t, err)
	return w, r
}

func TestSubscriberLoopOverLoopback(t *testing.T) {
	w, r := newLoopbackPair(t, dds.QosPolicies{Reliability: dds.Reliability{Kind: dds.Reliable}})
	counters := metering.NewCounters()
	out := &syncBuffer{}
	cancel := signals.NewSource()
	loop := NewLoop(poll.NewPoller(), cancel, NewSubscriber(r, "Square", "", counters, out), out)

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()

	require.NoError(t, w.Write(model.Shape{Color: "BLUE", X: 10, Y: 20, ShapeSize: 21}))
	require.NoError(t, w.Write(model.Shape{Color: "BLUE", X: 12, Y: 23, ShapeSize: 21}))
	require.NoError(t, w.(*loopback.DataWriter).Dispose("BLUE"))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `Disposed key "BLUE"`)
	}, 5*time.Second, 10*time.Millisecond)

	cancel.Deliver(os.Interrupt)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}

	output := out.String()
	assert.Contains(t, output, "DataReader status: SubscriptionMatched")
	assert.Contains(t, output, "Square     BLUE        10  20 [21]\n")
	assert.Contains(t, output, "Square     BLUE        12  23 [21]\n")
	assert.True(t, strings.HasSuffix(output, "Done.\n"))
	assert.Equal(t, uint64(2), counters.Snapshot().Received)
	assert.Equal(t, uint64(1), counters.Snapshot().Disposed)
}

func TestPublisherLoopOverLoopback(t *testing.T) {
	w, r := newLoopbackPair(t, dds.QosPolicies{Reliability: dds.Reliability{Kind: dds.Reliable}})
	counters := metering.NewCounters()
	out := &syncBuffer{}
	cancel := signals.NewSource()
	pub := NewPublisher(w, model.Shape{Color: "RED", ShapeSize: 21}, model.Velocity{XV: 2, YV: 3}, counters, out)
	loop := NewLoop(poll.NewPoller(), cancel, pub, out)

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()

	require.Eventually(t, func() bool {
		return counters.Snapshot().Published >= 2
	}, 5*time.Second, 10*time.Millisecond)
	cancel.Deliver(os.Interrupt)
	require.NoError(t, <-done)

	var shapes []model.Shape
	for {
		s, err := r.TakeNextSample()
		require.NoError(t, err)
		if s == nil {
			break
		}
		shapes = append(shapes, s.(model.Value).Shape)
	}
	require.GreaterOrEqual(t, len(shapes), 2)
	// the first tick reflects off the lower corner of the area
	assert.Equal(t, model.Shape{Color: "RED", X: 11, Y: 11, ShapeSize: 21}, shapes[0])
	// and the second one bounces straight back onto the same bounds
	assert.Equal(t, model.Shape{Color: "RED", X: 11, Y: 11, ShapeSize: 21}, shapes[1])
	assert.Contains(t, out.String(), "DataWriter status: PublicationMatched")
}
