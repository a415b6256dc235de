// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

// Sample is one item taken from a data reader. It is either a Value carrying
// a full shape or a Withdrawn notification carrying only the instance key.
type Sample interface {
	// InstanceKey returns the key the sample refers to.
	InstanceKey() string
	isSample()
}

// Value is a sample carrying a shape payload.
type Value struct {
	Shape Shape
}

// Withdrawn reports that the instance identified by Key was disposed.
type Withdrawn struct {
	Key string
}

func (v Value) InstanceKey() string     { return v.Shape.Color }
func (w Withdrawn) InstanceKey() string { return w.Key }

func (Value) isSample()     {}
func (Withdrawn) isSample() {}
