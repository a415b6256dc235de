// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package mqttdds implements the dds interfaces on top of an MQTT broker.
//
// Every shape instance has its own MQTT topic, dds/<domain>/<topic>/<color>,
// and readers subscribe to all instances of their topic. Reliable endpoints
// use MQTT QoS 1, best effort ones QoS 0. Writers with a transient-local or
// stronger durability publish retained messages, which gives late joining
// readers the last value of each instance. An empty message disposes the
// instance.
package mqttdds

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/dds"
)

type Config struct {
	BrokerURL      string
	ClientIDPrefix string
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
	KeepAlive      time.Duration
}

func DefaultConfig(brokerURL string) Config {
	return Config{
		BrokerURL:      brokerURL,
		ClientIDPrefix: "shapes-interop-",
		ConnectTimeout: 10 * time.Second,
		PublishTimeout: 5 * time.Second,
		KeepAlive:      30 * time.Second,
	}
}

type clientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// Participant owns one MQTT connection shared by its readers and writers.
type Participant struct {
	cfg      Config
	domainID uint16
	clientID string
	client   mqtt.Client

	mu      sync.Mutex
	writers []*DataWriter
	readers []*DataReader
	closed  bool
}

var _ dds.DomainParticipant = (*Participant)(nil)

// NewParticipant connects to the broker and returns once the connection is
// established.
func NewParticipant(domainID uint16, cfg Config) (*Participant, error) {
	return newParticipant(domainID, cfg, mqtt.NewClient)
}

func newParticipant(domainID uint16, cfg Config, newClient clientFactory) (*Participant, error) {
	p := &Participant{
		cfg:      cfg,
		domainID: domainID,
		clientID: cfg.ClientIDPrefix + uuid.New().String(),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(p.clientID).
		SetKeepAlive(cfg.KeepAlive).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectionLostHandler(p.onConnectionLost).
		SetOnConnectHandler(p.onConnect)
	p.client = newClient(opts)

	token := p.client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connecting to %s: timed out after %s", cfg.BrokerURL, cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.BrokerURL, err)
	}
	log.WithField("broker", cfg.BrokerURL).WithField("client_id", p.clientID).Info("Connected to MQTT broker")
	return p, nil
}

func (p *Participant) endpoints() ([]*DataWriter, []*DataReader) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*DataWriter(nil), p.writers...), append([]*DataReader(nil), p.readers...)
}

func (p *Participant) onConnect(_ mqtt.Client) {
	writers, readers := p.endpoints()
	for _, w := range writers {
		w.statuses.Push(dds.Status{Kind: dds.LivelinessChanged, Alive: true, Remote: p.cfg.BrokerURL})
	}
	for _, r := range readers {
		r.statuses.Push(dds.Status{Kind: dds.LivelinessChanged, Alive: true, Remote: p.cfg.BrokerURL})
		// clean sessions lose their subscriptions on reconnect
		go func(r *DataReader) {
			if err := r.subscribe(); err != nil {
				log.WithError(err).Warn("Failed to resubscribe after reconnect")
			}
		}(r)
	}
}

func (p *Participant) onConnectionLost(_ mqtt.Client, err error) {
	log.WithError(err).WithField("broker", p.cfg.BrokerURL).Warn("MQTT connection lost")
	writers, readers := p.endpoints()
	for _, w := range writers {
		w.statuses.Push(dds.Status{Kind: dds.LivelinessChanged, Alive: false, Remote: p.cfg.BrokerURL})
	}
	for _, r := range readers {
		r.statuses.Push(dds.Status{Kind: dds.LivelinessChanged, Alive: false, Remote: p.cfg.BrokerURL})
	}
}

func (p *Participant) DomainID() uint16 {
	return p.domainID
}

func (p *Participant) CreateTopic(name, typeName string, qos dds.QosPolicies) (dds.Topic, error) {
	return dds.NewTopic(name, typeName, qos)
}

func (p *Participant) CreateDataWriter(topic dds.Topic, qos dds.QosPolicies) (dds.DataWriter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, dds.ErrClosed
	}
	w := newDataWriter(p, topic, qos)
	p.writers = append(p.writers, w)
	if p.client.IsConnectionOpen() {
		w.statuses.Push(dds.Status{Kind: dds.PublicationMatched, TotalCount: 1, CurrentCountChange: 1, Remote: p.cfg.BrokerURL})
	}
	return w, nil
}

func (p *Participant) CreateDataReader(topic dds.Topic, qos dds.QosPolicies) (dds.DataReader, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, dds.ErrClosed
	}
	r := newDataReader(p, topic, qos)
	p.readers = append(p.readers, r)
	p.mu.Unlock()

	if err := r.subscribe(); err != nil {
		r.Close()
		return nil, err
	}
	r.statuses.Push(dds.Status{Kind: dds.SubscriptionMatched, TotalCount: 1, CurrentCountChange: 1, Remote: p.cfg.BrokerURL})
	return r, nil
}

// Close unsubscribes the readers and disconnects from the broker.
func (p *Participant) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	writers, readers := p.writers, p.readers
	p.mu.Unlock()

	for _, r := range readers {
		r.Close()
	}
	for _, w := range writers {
		w.Close()
	}
	p.client.Disconnect(250)
	return nil
}

func mqttQos(r dds.Reliability) byte {
	if r.Kind == dds.Reliable {
		return 1
	}
	return 0
}
