// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fatalerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	type test struct {
		input    error
		expected ErrorType
	}

	cause := errors.New("broker unreachable")
	var tests = []test{
		{nil, Unknown},
		{cause, Unknown},
		{New(TransportFailure, cause), TransportFailure},
		{fmt.Errorf("starting: %w", New(PublishFailed, cause)), PublishFailed},
		{Errorf(UnsupportedQos, "QoS policy %s is not yet implemented.", "Partition"), UnsupportedQos},
	}

	for _, tt := range tests {
		testname := fmt.Sprintf("TypeOf with %v", tt.input)
		t.Run(testname, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeOf(tt.input))
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(PublishFailed, cause)

	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "Runtime.PublishFailed: connection refused")
	assert.EqualError(t, &Error{Type: Unknown}, "Unknown")
}
