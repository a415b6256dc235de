// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/dds"
	"go.shapes.dev/interop/dds/loopback"
	"go.shapes.dev/interop/dds/mqttdds"
)

// newParticipant joins domainID over the selected transport.
func newParticipant(opts options, domainID uint16) (dds.DomainParticipant, error) {
	switch opts.Transport {
	case transportLoopback:
		log.Warn("Loopback transport only reaches entities of this process")
		return loopback.NewDomain().NewParticipant(domainID), nil
	case transportMQTT, "":
		p, err := mqttdds.NewParticipant(domainID, mqttdds.DefaultConfig(opts.Broker))
		if err != nil {
			return nil, fmt.Errorf("DomainParticipant construction failed: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown transport %q", opts.Transport)
}
