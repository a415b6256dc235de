// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/dds"
	"go.shapes.dev/interop/metering"
)

// drainStatuses prints every queued status of entity. A failing poll ends
// the drain for this wakeup.
func drainStatuses(out io.Writer, entity string, source dds.StatusEvented, counters *metering.Counters) {
	for {
		status, err := source.TryRecvStatus()
		if errors.Is(err, dds.ErrClosed) {
			log.Debugf("%s status queue closed", entity)
			return
		}
		if err != nil {
			log.WithError(err).Warnf("%s status poll failed", entity)
			return
		}
		if status == nil {
			return
		}

		fmt.Fprintf(out, "%s status: %v\n", entity, *status)
		counters.Status()
	}
}
