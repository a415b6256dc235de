// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package loopback implements the dds interfaces inside one process. Writers
// deliver straight into the queues of the readers they are matched with.
package loopback

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/dds"
)

type topicKey struct {
	domainID uint16
	name     string
}

type endpoints struct {
	writers map[*DataWriter]struct{}
	readers map[*DataReader]struct{}
}

// Domain is the shared medium participants of the same process talk over.
type Domain struct {
	mu     sync.Mutex
	topics map[topicKey]*endpoints
}

func NewDomain() *Domain {
	return &Domain{topics: make(map[topicKey]*endpoints)}
}

func (d *Domain) endpointsLocked(key topicKey) *endpoints {
	ep, ok := d.topics[key]
	if !ok {
		ep = &endpoints{
			writers: make(map[*DataWriter]struct{}),
			readers: make(map[*DataReader]struct{}),
		}
		d.topics[key] = ep
	}
	return ep
}

// match connects w and r if their QoS allow it, otherwise both sides get an
// incompatible QoS status. Called with d.mu held.
func (d *Domain) matchLocked(w *DataWriter, r *DataReader) {
	ok, policy := dds.Compatible(w.qos, r.qos)
	if !ok {
		log.WithField("policy", policy).Debugf("%s and %s are not compatible", w.guid, r.guid)
		w.incompatible++
		w.statuses.Push(dds.Status{Kind: dds.OfferedIncompatibleQos, TotalCount: w.incompatible, Remote: policy})
		r.incompatible++
		r.statuses.Push(dds.Status{Kind: dds.RequestedIncompatibleQos, TotalCount: r.incompatible, Remote: policy})
		return
	}

	w.matched[r] = struct{}{}
	w.matchedTotal++
	w.statuses.Push(dds.Status{Kind: dds.PublicationMatched, TotalCount: w.matchedTotal, CurrentCountChange: 1, Remote: r.guid})
	r.matchedTotal++
	r.statuses.Push(dds.Status{Kind: dds.SubscriptionMatched, TotalCount: r.matchedTotal, CurrentCountChange: 1, Remote: w.guid})

	if w.qos.Durability >= dds.TransientLocal && r.qos.Durability >= dds.TransientLocal {
		for _, s := range w.retainedLocked() {
			r.deliver(s)
		}
	}
}

func (d *Domain) unmatchLocked(w *DataWriter, r *DataReader) {
	if _, ok := w.matched[r]; !ok {
		return
	}
	delete(w.matched, r)
	w.statuses.Push(dds.Status{Kind: dds.PublicationMatched, TotalCount: w.matchedTotal, CurrentCountChange: -1, Remote: r.guid})
	r.statuses.Push(dds.Status{Kind: dds.SubscriptionMatched, TotalCount: r.matchedTotal, CurrentCountChange: -1, Remote: w.guid})
}

// Participant is a dds.DomainParticipant attached to a Domain.
type Participant struct {
	domain   *Domain
	domainID uint16
	guid     uuid.UUID

	mu       sync.Mutex
	entities int
	writers  []*DataWriter
	readers  []*DataReader
	closed   bool
}

var _ dds.DomainParticipant = (*Participant)(nil)

func (d *Domain) NewParticipant(domainID uint16) *Participant {
	return &Participant{domain: d, domainID: domainID, guid: uuid.New()}
}

func (p *Participant) DomainID() uint16 {
	return p.domainID
}

func (p *Participant) CreateTopic(name, typeName string, qos dds.QosPolicies) (dds.Topic, error) {
	return dds.NewTopic(name, typeName, qos)
}

func (p *Participant) nextGUID(kind string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return "", dds.ErrClosed
	}
	p.entities++
	return fmt.Sprintf("%s/%s-%d", p.guid, kind, p.entities), nil
}

func (p *Participant) CreateDataWriter(topic dds.Topic, qos dds.QosPolicies) (dds.DataWriter, error) {
	guid, err := p.nextGUID("writer")
	if err != nil {
		return nil, err
	}
	w := newDataWriter(p.domain, topicKey{p.domainID, topic.Name}, guid, qos)

	p.domain.mu.Lock()
	ep := p.domain.endpointsLocked(w.topic)
	ep.writers[w] = struct{}{}
	for r := range ep.readers {
		p.domain.matchLocked(w, r)
	}
	p.domain.mu.Unlock()

	p.mu.Lock()
	p.writers = append(p.writers, w)
	p.mu.Unlock()
	return w, nil
}

func (p *Participant) CreateDataReader(topic dds.Topic, qos dds.QosPolicies) (dds.DataReader, error) {
	guid, err := p.nextGUID("reader")
	if err != nil {
		return nil, err
	}
	r := newDataReader(p.domain, topicKey{p.domainID, topic.Name}, guid, qos)

	p.domain.mu.Lock()
	ep := p.domain.endpointsLocked(r.topic)
	ep.readers[r] = struct{}{}
	for w := range ep.writers {
		p.domain.matchLocked(w, r)
	}
	p.domain.mu.Unlock()

	p.mu.Lock()
	p.readers = append(p.readers, r)
	p.mu.Unlock()
	return r, nil
}

// Close closes every reader and writer the participant created.
func (p *Participant) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	writers, readers := p.writers, p.readers
	p.mu.Unlock()

	for _, w := range writers {
		w.Close()
	}
	for _, r := range readers {
		r.Close()
	}
	return nil
}
