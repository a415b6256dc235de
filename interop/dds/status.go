// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package dds

import "fmt"

type StatusKind int

const (
	PublicationMatched StatusKind = iota
	SubscriptionMatched
	OfferedDeadlineMissed
	RequestedDeadlineMissed
	OfferedIncompatibleQos
	RequestedIncompatibleQos
	LivelinessChanged
)

var statusKindNames = map[StatusKind]string{
	PublicationMatched:       "PublicationMatched",
	SubscriptionMatched:      "SubscriptionMatched",
	OfferedDeadlineMissed:    "OfferedDeadlineMissed",
	RequestedDeadlineMissed:  "RequestedDeadlineMissed",
	OfferedIncompatibleQos:   "OfferedIncompatibleQos",
	RequestedIncompatibleQos: "RequestedIncompatibleQos",
	LivelinessChanged:        "LivelinessChanged",
}

func (k StatusKind) String() string {
	if name, ok := statusKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("StatusKind(%d)", int(k))
}

// Status is a communication status change reported by a reader or writer.
// Which of the optional fields are meaningful depends on Kind.
type Status struct {
	Kind       StatusKind
	TotalCount int32
	// CurrentCountChange is +1 or -1 for matched statuses.
	CurrentCountChange int32
	// Key is the instance whose deadline was missed.
	Key string
	// Remote names the matched endpoint or, for incompatible QoS, the policy.
	Remote string
	Alive  bool
}

func (s Status) String() string {
	switch s.Kind {
	case PublicationMatched, SubscriptionMatched:
		return fmt.Sprintf("%s { total_count: %d, current_count_change: %+d, remote: %s }",
			s.Kind, s.TotalCount, s.CurrentCountChange, s.Remote)
	case OfferedDeadlineMissed, RequestedDeadlineMissed:
		return fmt.Sprintf("%s { total_count: %d, instance: %s }", s.Kind, s.TotalCount, s.Key)
	case OfferedIncompatibleQos, RequestedIncompatibleQos:
		return fmt.Sprintf("%s { total_count: %d, policy: %s }", s.Kind, s.TotalCount, s.Remote)
	case LivelinessChanged:
		return fmt.Sprintf("%s { alive: %t, remote: %s }", s.Kind, s.Alive, s.Remote)
	}
	return s.Kind.String()
}
