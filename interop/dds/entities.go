// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package dds describes the slice of a publish/subscribe middleware that the
// shapes client needs: a participant creating one keyed topic and one reader
// or writer on it, communication statuses, and QoS policies.
package dds

import (
	"errors"
	"fmt"
	"strings"

	"go.shapes.dev/interop/model"
	"go.shapes.dev/interop/poll"
)

var (
	ErrClosed       = errors.New("entity closed")
	ErrNotConnected = errors.New("not connected")
	ErrInvalidName  = errors.New("invalid name")
)

type Topic struct {
	Name     string
	TypeName string
	Qos      QosPolicies
}

// NewTopic validates the topic name and type name.
func NewTopic(name, typeName string, qos QosPolicies) (Topic, error) {
	if err := ValidateName(name); err != nil {
		return Topic{}, fmt.Errorf("topic: %w", err)
	}
	if typeName == "" {
		return Topic{}, fmt.Errorf("type name: %w", ErrInvalidName)
	}
	return Topic{Name: name, TypeName: typeName, Qos: qos}, nil
}

// ValidateName rejects names that cannot be used as a topic or instance key:
// empty ones and ones containing separator or wildcard characters.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, "/+#") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// StatusEvented gives access to the status queue of a reader or writer.
type StatusEvented interface {
	// StatusSource reports readiness whenever a status is queued.
	StatusSource() poll.Evented
	// TryRecvStatus returns the next queued status, or nil if none is pending.
	TryRecvStatus() (*Status, error)
}

type DataWriter interface {
	StatusEvented
	// Write publishes one update of the shape instance.
	Write(shape model.Shape) error
	Close() error
}

// DataReader reports data readiness through its own Evented implementation.
type DataReader interface {
	poll.Evented
	StatusEvented
	// TakeNextSample removes the oldest available sample. It returns a nil
	// sample and a nil error when nothing is available.
	TakeNextSample() (model.Sample, error)
	Close() error
}

type DomainParticipant interface {
	DomainID() uint16
	CreateTopic(name, typeName string, qos QosPolicies) (Topic, error)
	CreateDataWriter(topic Topic, qos QosPolicies) (DataWriter, error)
	CreateDataReader(topic Topic, qos QosPolicies) (DataReader, error)
	Close() error
}
