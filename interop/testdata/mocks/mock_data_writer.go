// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	mock "github.com/stretchr/testify/mock"

	dds "go.shapes.dev/interop/dds"
	model "go.shapes.dev/interop/model"
	poll "go.shapes.dev/interop/poll"
)

type MockDataWriter struct {
	mock.Mock
}

func (_m *MockDataWriter) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockDataWriter) StatusSource() poll.Evented {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for StatusSource")
	}

	var r0 poll.Evented
	if rf, ok := ret.Get(0).(func() poll.Evented); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(poll.Evented)
		}
	}

	return r0
}

func (_m *MockDataWriter) TryRecvStatus() (*dds.Status, error) {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for TryRecvStatus")
	}

	var r0 *dds.Status
	var r1 error
	if rf, ok := ret.Get(0).(func() (*dds.Status, error)); ok {
		return rf()
	}
	if rf, ok := ret.Get(0).(func() *dds.Status); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*dds.Status)
		}
	}

	if rf, ok := ret.Get(1).(func() error); ok {
		r1 = rf()
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockDataWriter) Write(shape model.Shape) error {
	ret := _m.Called(shape)

	if len(ret) == 0 {
		panic("no return value specified for Write")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(model.Shape) error); ok {
		r0 = rf(shape)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func NewMockDataWriter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockDataWriter {
	mock := &MockDataWriter{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
