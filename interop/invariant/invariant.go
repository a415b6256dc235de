// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package invariant reports programming errors, such as a readiness token
// registered twice, through a swappable executor that panics by default.
package invariant

import (
	"fmt"
	"sync"
)

type ViolationError struct {
	Statement string
}

func (err ViolationError) Error() string {
	return "Invariant violation: " + err.Statement
}

type ViolationExecutor interface {
	Exec(ViolationError)
}

type PanicViolationExecutor struct{}

var _ ViolationExecutor = (*PanicViolationExecutor)(nil)

func NewPanicViolationExecutor() *PanicViolationExecutor {
	return &PanicViolationExecutor{}
}

func (executor *PanicViolationExecutor) Exec(err ViolationError) {
	panic(err)
}

func Checkf(cond bool, format string, args ...any) {
	if !cond {
		Violate(fmt.Sprintf(format, args...))
	}
}

func Violate(statement string) {
	std.mtx.Lock()
	executor := std.executor
	std.mtx.Unlock()

	executor.Exec(ViolationError{Statement: statement})
}

// SetViolationExecutor installs executor and returns the previous one.
func SetViolationExecutor(executor ViolationExecutor) ViolationExecutor {
	std.mtx.Lock()
	defer std.mtx.Unlock()

	prev := std.executor
	std.executor = executor
	return prev
}

var std = struct {
	executor ViolationExecutor
	mtx      sync.Mutex
}{
	executor: NewPanicViolationExecutor(),
}
