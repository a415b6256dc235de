// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mqttdds

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	mqtt.Token
	err     error
	pending bool
}

func (t *fakeToken) Wait() bool                       { return !t.pending }
func (t *fakeToken) WaitTimeout(_ time.Duration) bool { return !t.pending }
func (t *fakeToken) Error() error                     { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.pending {
		close(ch)
	}
	return ch
}

type fakeMessage struct {
	mqtt.Message
	topic    string
	payload  []byte
	retained bool
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }
func (m *fakeMessage) Retained() bool  { return m.retained }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records what the participant asks of the broker.
type fakeClient struct {
	mqtt.Client
	opts *mqtt.ClientOptions

	mu            sync.Mutex
	connectErr    error
	publishErr    error
	connectHangs  bool
	open          bool
	published     []published
	subscriptions map[string]mqtt.MessageHandler
	subscribeQos  map[string]byte
	disconnected  bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		subscriptions: make(map[string]mqtt.MessageHandler),
		subscribeQos:  make(map[string]byte),
	}
}

func (c *fakeClient) factory(opts *mqtt.ClientOptions) mqtt.Client {
	c.opts = opts
	return c
}

func (c *fakeClient) Connect() mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectHangs {
		return &fakeToken{pending: true}
	}
	if c.connectErr == nil {
		c.open = true
	}
	return &fakeToken{err: c.connectErr}
}

func (c *fakeClient) IsConnected() bool {
	return c.IsConnectionOpen()
}

func (c *fakeClient) IsConnectionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeClient) Disconnect(_ uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.disconnected = true
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return &fakeToken{err: c.publishErr}
	}
	c.published = append(c.published, published{topic, qos, retained, payload.([]byte)})
	return &fakeToken{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[topic] = callback
	c.subscribeQos[topic] = qos
	return &fakeToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.subscriptions, t)
	}
	return &fakeToken{}
}

// deliver hands msg to the handler subscribed with filter.
func (c *fakeClient) deliver(filter string, msg *fakeMessage) {
	c.mu.Lock()
	handler := c.subscriptions[filter]
	c.mu.Unlock()
	if handler != nil {
		handler(c, msg)
	}
}
