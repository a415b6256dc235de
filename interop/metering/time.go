// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metering

import (
	_ "runtime" //for nanotime()
	"time"
	_ "unsafe" //for go:linkname
)

//go:linkname Monotime runtime.nanotime
func Monotime() int64

// MonoToEpoch converts monotonic time nanos to unix epoch time nanos.
func MonoToEpoch(t int64) int64 {
	monoNsec := Monotime()
	wallNsec := time.Now().UnixNano()
	clockOffset := wallNsec - monoNsec
	return t + clockOffset
}
