// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockViolationExecutor struct {
	mock.Mock
}

var _ ViolationExecutor = (*mockViolationExecutor)(nil)

func (m *mockViolationExecutor) Exec(err ViolationError) {
	m.Called(err)
}

func TestViolationErrorMessage(t *testing.T) {
	err := ViolationError{Statement: "token 1 registered twice"}
	assert.EqualError(t, err, "Invariant violation: token 1 registered twice")
}

func TestDefaultExecutorPanics(t *testing.T) {
	assert.PanicsWithValue(t, ViolationError{Statement: "oops 42"}, func() {
		Checkf(false, "oops %d", 42)
	})
}

func TestChecksUseProvidedExecutor(t *testing.T) {
	m := &mockViolationExecutor{}
	prev := SetViolationExecutor(m)
	defer SetViolationExecutor(prev)

	Checkf(true, "never reported")
	assert.Empty(t, m.Calls)

	m.On("Exec", ViolationError{Statement: "reported 7"}).Once()
	Checkf(false, "reported %d", 7)
	m.AssertExpectations(t)
}
