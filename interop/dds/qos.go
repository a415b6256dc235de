// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package dds

import (
	"fmt"
	"time"
)

type ReliabilityKind int

const (
	BestEffort ReliabilityKind = iota
	Reliable
)

func (k ReliabilityKind) String() string {
	switch k {
	case BestEffort:
		return "BestEffort"
	case Reliable:
		return "Reliable"
	}
	return fmt.Sprintf("ReliabilityKind(%d)", int(k))
}

type Reliability struct {
	Kind            ReliabilityKind
	MaxBlockingTime time.Duration
}

// Durability kinds are ordered from weakest to strongest.
type Durability int

const (
	Volatile Durability = iota
	TransientLocal
	Transient
	Persistent
)

func (d Durability) String() string {
	switch d {
	case Volatile:
		return "Volatile"
	case TransientLocal:
		return "TransientLocal"
	case Transient:
		return "Transient"
	case Persistent:
		return "Persistent"
	}
	return fmt.Sprintf("Durability(%d)", int(d))
}

type HistoryKind int

const (
	KeepAll HistoryKind = iota
	KeepLast
)

type History struct {
	Kind  HistoryKind
	Depth int32
}

func (h History) String() string {
	if h.Kind == KeepLast {
		return fmt.Sprintf("KeepLast(%d)", h.Depth)
	}
	return "KeepAll"
}

// QosPolicies is built once at startup and never modified afterwards.
// A zero Deadline means no deadline is requested or offered.
type QosPolicies struct {
	Reliability Reliability
	Durability  Durability
	History     History
	Deadline    time.Duration
}

func (q QosPolicies) String() string {
	deadline := "infinite"
	if q.Deadline > 0 {
		deadline = q.Deadline.String()
	}
	return fmt.Sprintf("reliability=%s durability=%s history=%s deadline=%s",
		q.Reliability.Kind, q.Durability, q.History, deadline)
}

// Compatible applies the requested-versus-offered rule between a writer and
// a reader. When the pair is incompatible it names the first offending policy.
func Compatible(offered, requested QosPolicies) (bool, string) {
	if offered.Reliability.Kind < requested.Reliability.Kind {
		return false, "Reliability"
	}
	if offered.Durability < requested.Durability {
		return false, "Durability"
	}
	if requested.Deadline > 0 && (offered.Deadline <= 0 || offered.Deadline > requested.Deadline) {
		return false, "Deadline"
	}
	return true, ""
}
