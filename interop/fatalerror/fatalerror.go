// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fatalerror

// This package defines the error types that end the process with a
// non-zero exit code. Separate package for namespacing.

import (
	"errors"
	"fmt"
)

// ErrorType names the reason the process gave up.
type ErrorType string

const (
	InvalidArgument  ErrorType = "Setup.InvalidArgument"  // command line could not be parsed or validated
	UnsupportedQos   ErrorType = "Setup.UnsupportedQos"   // a QoS policy was requested that is not implemented
	TransportFailure ErrorType = "Setup.TransportFailure" // middleware transport could not be reached
	EntityCreation   ErrorType = "Setup.EntityCreation"   // topic, reader or writer creation failed
	LoggingConfig    ErrorType = "Setup.LoggingConfig"    // logging configuration file was rejected
	PublishFailed    ErrorType = "Runtime.PublishFailed"  // a shape update could not be written
	Unknown          ErrorType = "Unknown"
)

// Error carries the fatal error type together with its cause.
type Error struct {
	Type ErrorType
	Err  error
}

func New(errType ErrorType, err error) *Error {
	return &Error{Type: errType, Err: err}
}

func Errorf(errType ErrorType, format string, args ...any) *Error {
	return &Error{Type: errType, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Type)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// TypeOf returns the fatal type attached to err, or Unknown.
func TypeOf(err error) ErrorType {
	var fatal *Error
	if errors.As(err, &fatal) {
		return fatal.Type
	}
	return Unknown
}
