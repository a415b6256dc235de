// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package loopback

import (
	"sync/atomic"

	"go.shapes.dev/interop/dds"
	"go.shapes.dev/interop/model"
	"go.shapes.dev/interop/poll"
)

type DataWriter struct {
	domain   *Domain
	topic    topicKey
	guid     string
	qos      dds.QosPolicies
	statuses *dds.StatusQueue
	deadline *dds.DeadlineMonitor

	// guarded by domain.mu
	matched      map[*DataReader]struct{}
	matchedTotal int32
	incompatible int32
	retained     map[string]model.Sample
	retainedKeys []string
	closed       bool
}

var _ dds.DataWriter = (*DataWriter)(nil)

func newDataWriter(d *Domain, topic topicKey, guid string, qos dds.QosPolicies) *DataWriter {
	statuses := dds.NewStatusQueue()
	return &DataWriter{
		domain:   d,
		topic:    topic,
		guid:     guid,
		qos:      qos,
		statuses: statuses,
		deadline: dds.NewDeadlineMonitor(qos.Deadline, dds.OfferedDeadlineMissed, statuses),
		matched:  make(map[*DataReader]struct{}),
		retained: make(map[string]model.Sample),
	}
}

// GUID identifies the writer in matched statuses of its readers.
func (w *DataWriter) GUID() string {
	return w.guid
}

func (w *DataWriter) StatusSource() poll.Evented {
	return w.statuses
}

func (w *DataWriter) TryRecvStatus() (*dds.Status, error) {
	return w.statuses.TryRecv()
}

func (w *DataWriter) Write(shape model.Shape) error {
	if err := dds.ValidateName(shape.Color); err != nil {
		return err
	}
	readers, err := w.publish(model.Value{Shape: shape})
	if err != nil {
		return err
	}
	w.deadline.Observe(shape.Color)

	for _, r := range readers {
		r.deliver(model.Value{Shape: shape})
	}
	return nil
}

// Dispose withdraws the instance identified by key from all matched readers.
func (w *DataWriter) Dispose(key string) error {
	readers, err := w.publish(model.Withdrawn{Key: key})
	if err != nil {
		return err
	}
	w.deadline.Forget(key)

	for _, r := range readers {
		r.deliver(model.Withdrawn{Key: key})
	}
	return nil
}

// publish records s for late joiners and returns the readers to deliver to.
func (w *DataWriter) publish(s model.Sample) ([]*DataReader, error) {
	w.domain.mu.Lock()
	defer w.domain.mu.Unlock()

	if w.closed {
		return nil, dds.ErrClosed
	}

	key := s.InstanceKey()
	if _, isValue := s.(model.Value); isValue {
		if _, known := w.retained[key]; !known {
			w.retainedKeys = append(w.retainedKeys, key)
		}
		w.retained[key] = s
	} else if _, known := w.retained[key]; known {
		delete(w.retained, key)
		for i, k := range w.retainedKeys {
			if k == key {
				w.retainedKeys = append(w.retainedKeys[:i], w.retainedKeys[i+1:]...)
				break
			}
		}
	}

	readers := make([]*DataReader, 0, len(w.matched))
	for r := range w.matched {
		readers = append(readers, r)
	}
	return readers, nil
}

func (w *DataWriter) retainedLocked() []model.Sample {
	out := make([]model.Sample, 0, len(w.retainedKeys))
	for _, k := range w.retainedKeys {
		out = append(out, w.retained[k])
	}
	return out
}

func (w *DataWriter) Close() error {
	w.domain.mu.Lock()
	defer w.domain.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	for r := range w.matched {
		w.domain.unmatchLocked(w, r)
	}
	delete(w.domain.endpointsLocked(w.topic).writers, w)
	w.deadline.Stop()
	w.statuses.Close()
	return nil
}

type DataReader struct {
	domain   *Domain
	topic    topicKey
	guid     string
	qos      dds.QosPolicies
	queue    *dds.SampleQueue
	statuses *dds.StatusQueue
	deadline *dds.DeadlineMonitor
	closed   atomic.Bool

	// guarded by domain.mu
	matchedTotal int32
	incompatible int32
}

var _ dds.DataReader = (*DataReader)(nil)

func newDataReader(d *Domain, topic topicKey, guid string, qos dds.QosPolicies) *DataReader {
	statuses := dds.NewStatusQueue()
	return &DataReader{
		domain:   d,
		topic:    topic,
		guid:     guid,
		qos:      qos,
		queue:    dds.NewSampleQueue(qos.History),
		statuses: statuses,
		deadline: dds.NewDeadlineMonitor(qos.Deadline, dds.RequestedDeadlineMissed, statuses),
	}
}

func (r *DataReader) GUID() string {
	return r.guid
}

func (r *DataReader) deliver(s model.Sample) {
	if r.closed.Load() {
		return
	}
	switch s := s.(type) {
	case model.Value:
		r.deadline.Observe(s.Shape.Color)
	case model.Withdrawn:
		r.deadline.Forget(s.Key)
	}
	r.queue.Push(s)
}

// SetReadyFunc registers the data readiness of the reader.
func (r *DataReader) SetReadyFunc(ready func()) {
	r.queue.SetReadyFunc(ready)
}

func (r *DataReader) TakeNextSample() (model.Sample, error) {
	if r.closed.Load() {
		return nil, dds.ErrClosed
	}
	s, ok := r.queue.Pop()
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (r *DataReader) StatusSource() poll.Evented {
	return r.statuses
}

func (r *DataReader) TryRecvStatus() (*dds.Status, error) {
	return r.statuses.TryRecv()
}

func (r *DataReader) Close() error {
	if r.closed.Swap(true) {
		return nil
	}

	r.domain.mu.Lock()
	ep := r.domain.endpointsLocked(r.topic)
	for w := range ep.writers {
		r.domain.unmatchLocked(w, r)
	}
	delete(ep.readers, r)
	r.domain.mu.Unlock()

	r.deadline.Stop()
	r.statuses.Close()
	return nil
}
