// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/dds"
	"go.shapes.dev/interop/metering"
	"go.shapes.dev/interop/model"
	"go.shapes.dev/interop/poll"
)

// Subscriber prints the samples of its reader.
type Subscriber struct {
	reader   dds.DataReader
	topic    string
	color    string
	counters *metering.Counters
	out      io.Writer
}

var _ Role = (*Subscriber)(nil)

// NewSubscriber returns a subscriber printing samples taken from reader.
// When color is not empty, samples of other instances are taken but not
// printed.
func NewSubscriber(reader dds.DataReader, topic, color string, counters *metering.Counters, out io.Writer) *Subscriber {
	return &Subscriber{
		reader:   reader,
		topic:    topic,
		color:    color,
		counters: counters,
		out:      out,
	}
}

func (s *Subscriber) Register(r Registry) {
	r.Register(s.reader, ReaderReady)
	r.Register(s.reader.StatusSource(), StatusReady)
}

func (s *Subscriber) Timeout() time.Duration {
	return poll.Forever
}

func (s *Subscriber) Dispatch(token poll.Token) bool {
	switch token {
	case ReaderReady:
		s.Drain()
	case StatusReady:
		drainStatuses(s.out, "DataReader", s.reader, s.counters)
	default:
		return false
	}
	return true
}

func (s *Subscriber) AfterWakeup() error {
	return nil
}

// Drain takes samples until the reader has none left and returns how many
// were taken. Take errors are reported and do not end the drain.
func (s *Subscriber) Drain() int {
	taken := 0
	for {
		sample, err := s.reader.TakeNextSample()
		if errors.Is(err, dds.ErrClosed) {
			log.Warn("DataReader closed while draining")
			return taken
		}
		if err != nil {
			fmt.Fprintf(s.out, "DataReader error %v\n", err)
			s.counters.TakeError()
			continue
		}
		if sample == nil {
			return taken
		}

		taken++
		if s.color != "" && sample.InstanceKey() != s.color {
			s.counters.Filtered()
			continue
		}

		switch v := sample.(type) {
		case model.Value:
			fmt.Fprintf(s.out, "%-10.10s %-10.10s %3d %3d [%d]\n", s.topic, v.Shape.Color, v.Shape.X, v.Shape.Y, v.Shape.ShapeSize)
			s.counters.Received(v.Shape)
		case model.Withdrawn:
			fmt.Fprintf(s.out, "Disposed key %q\n", v.Key)
			s.counters.Disposed()
		}
	}
}
