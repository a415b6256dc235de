// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package poll

import "sync"

// Notifier holds the ready function handed to an Evented source. The zero
// value is ready to use; notifications before registration are dropped.
type Notifier struct {
	mu    sync.Mutex
	ready func()
}

func (n *Notifier) SetReadyFunc(ready func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ready = ready
}

// Notify reports readiness to the poller the source is registered with.
func (n *Notifier) Notify() {
	n.mu.Lock()
	ready := n.ready
	n.mu.Unlock()

	if ready != nil {
		ready()
	}
}
