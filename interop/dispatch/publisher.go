// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/dds"
	"go.shapes.dev/interop/fatalerror"
	"go.shapes.dev/interop/metering"
	"go.shapes.dev/interop/model"
	"go.shapes.dev/interop/motion"
	"go.shapes.dev/interop/poll"
)

// Publisher moves its shape and writes it once per wakeup.
type Publisher struct {
	writer   dds.DataWriter
	shape    model.Shape
	velocity model.Velocity
	counters *metering.Counters
	out      io.Writer
}

var _ Role = (*Publisher)(nil)

func NewPublisher(writer dds.DataWriter, shape model.Shape, velocity model.Velocity, counters *metering.Counters, out io.Writer) *Publisher {
	return &Publisher{
		writer:   writer,
		shape:    shape,
		velocity: velocity,
		counters: counters,
		out:      out,
	}
}

func (p *Publisher) Register(r Registry) {
	r.Register(p.writer.StatusSource(), StatusReady)
}

func (p *Publisher) Timeout() time.Duration {
	return PublishInterval
}

func (p *Publisher) Dispatch(token poll.Token) bool {
	if token != StatusReady {
		return false
	}
	drainStatuses(p.out, "DataWriter", p.writer, p.counters)
	return true
}

func (p *Publisher) AfterWakeup() error {
	return p.Tick()
}

// Tick advances the shape one step and writes it.
func (p *Publisher) Tick() error {
	p.shape, p.velocity = motion.Advance(p.shape, p.velocity)

	log.WithField("color", p.shape.Color).Trace("Writing shape")
	if err := p.writer.Write(p.shape); err != nil {
		return fatalerror.Errorf(fatalerror.PublishFailed, "DataWriter write failed: %w", err)
	}
	p.counters.Published(p.shape)
	return nil
}

// Shape returns the last shape the publisher moved to.
func (p *Publisher) Shape() model.Shape {
	return p.shape
}

func (p *Publisher) Velocity() model.Velocity {
	return p.velocity
}
