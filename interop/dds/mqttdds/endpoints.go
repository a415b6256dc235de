// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mqttdds

import (
	"fmt"
	"sync"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/dds"
	"go.shapes.dev/interop/model"
	"go.shapes.dev/interop/poll"
)

type DataWriter struct {
	p        *Participant
	topic    dds.Topic
	qos      dds.QosPolicies
	statuses *dds.StatusQueue
	deadline *dds.DeadlineMonitor
	closed   atomic.Bool
}

var _ dds.DataWriter = (*DataWriter)(nil)

func newDataWriter(p *Participant, topic dds.Topic, qos dds.QosPolicies) *DataWriter {
	statuses := dds.NewStatusQueue()
	return &DataWriter{
		p:        p,
		topic:    topic,
		qos:      qos,
		statuses: statuses,
		deadline: dds.NewDeadlineMonitor(qos.Deadline, dds.OfferedDeadlineMissed, statuses),
	}
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
	payload, err := encodeShape(shape)
	if err != nil {
		return err
	}
	if err := w.publish(shape.Color, payload); err != nil {
		return err
	}
	w.deadline.Observe(shape.Color)
	return nil
}

// Dispose publishes an empty message for key, which also clears the retained
// value on the broker.
func (w *DataWriter) Dispose(key string) error {
	if err := dds.ValidateName(key); err != nil {
		return err
	}
	if err := w.publish(key, []byte{}); err != nil {
		return err
	}
	w.deadline.Forget(key)
	return nil
}

func (w *DataWriter) publish(key string, payload []byte) error {
	if w.closed.Load() {
		return dds.ErrClosed
	}

	topic := instanceTopic(w.p.domainID, w.topic.Name, key)
	retained := w.qos.Durability >= dds.TransientLocal
	token := w.p.client.Publish(topic, mqttQos(w.qos.Reliability), retained, payload)
	if !token.WaitTimeout(w.p.cfg.PublishTimeout) {
		return fmt.Errorf("publishing to %s: timed out after %s", topic, w.p.cfg.PublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	log.WithField("topic", topic).Trace("Published")
	return nil
}

func (w *DataWriter) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	w.deadline.Stop()
	w.statuses.Close()
	return nil
}

type DataReader struct {
	p        *Participant
	topic    dds.Topic
	qos      dds.QosPolicies
	filter   string
	queue    *dds.SampleQueue
	statuses *dds.StatusQueue
	deadline *dds.DeadlineMonitor
	closed   atomic.Bool

	mu     sync.Mutex
	failed []error
}

var _ dds.DataReader = (*DataReader)(nil)

func newDataReader(p *Participant, topic dds.Topic, qos dds.QosPolicies) *DataReader {
	statuses := dds.NewStatusQueue()
	return &DataReader{
		p:        p,
		topic:    topic,
		qos:      qos,
		filter:   topicFilter(p.domainID, topic.Name),
		queue:    dds.NewSampleQueue(qos.History),
		statuses: statuses,
		deadline: dds.NewDeadlineMonitor(qos.Deadline, dds.RequestedDeadlineMissed, statuses),
	}
}

func (r *DataReader) subscribe() error {
	token := r.p.client.Subscribe(r.filter, mqttQos(r.qos.Reliability), r.onMessage)
	if !token.WaitTimeout(r.p.cfg.ConnectTimeout) {
		return fmt.Errorf("subscribing to %s: timed out", r.filter)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.filter, err)
	}
	return nil
}

func (r *DataReader) onMessage(_ mqtt.Client, msg mqtt.Message) {
	if r.closed.Load() {
		return
	}
	// retained messages are history; volatile readers do not get history
	if msg.Retained() && r.qos.Durability == dds.Volatile {
		return
	}

	sample, err := decodeSample(msg.Topic(), msg.Payload())
	if err != nil {
		r.mu.Lock()
		r.failed = append(r.failed, err)
		r.mu.Unlock()
		r.queue.Notify()
		return
	}

	switch s := sample.(type) {
	case model.Value:
		r.deadline.Observe(s.Shape.Color)
	case model.Withdrawn:
		r.deadline.Forget(s.Key)
	}
	r.queue.Push(sample)
}

func (r *DataReader) SetReadyFunc(ready func()) {
	r.queue.SetReadyFunc(ready)

	r.mu.Lock()
	failed := len(r.failed) > 0
	r.mu.Unlock()
	if failed {
		r.queue.Notify()
	}
}

// TakeNextSample reports messages that could not be decoded before any
// pending sample; each such message fails exactly one take.
func (r *DataReader) TakeNextSample() (model.Sample, error) {
	if r.closed.Load() {
		return nil, dds.ErrClosed
	}

	r.mu.Lock()
	if len(r.failed) > 0 {
		err := r.failed[0]
		r.failed = r.failed[1:]
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

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
	if r.p.client.IsConnectionOpen() {
		token := r.p.client.Unsubscribe(r.filter)
		if !token.WaitTimeout(r.p.cfg.ConnectTimeout) || token.Error() != nil {
			log.WithError(token.Error()).WithField("topic", r.filter).Warn("Failed to unsubscribe")
		}
	}
	r.deadline.Stop()
	r.statuses.Close()
	return nil
}
