// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mqttdds

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.shapes.dev/interop/model"
)

var ErrMalformedSample = errors.New("malformed sample")

const topicRoot = "dds"

// instanceTopic is the MQTT topic one shape instance is published on.
func instanceTopic(domainID uint16, topic, key string) string {
	return fmt.Sprintf("%s/%d/%s/%s", topicRoot, domainID, topic, key)
}

// topicFilter matches every instance of topic.
func topicFilter(domainID uint16, topic string) string {
	return fmt.Sprintf("%s/%d/%s/+", topicRoot, domainID, topic)
}

func encodeShape(s model.Shape) ([]byte, error) {
	return json.Marshal(s)
}

// decodeSample turns a message into a sample. An empty payload withdraws the
// instance named by the last topic level.
func decodeSample(topic string, payload []byte) (model.Sample, error) {
	key := topic[strings.LastIndex(topic, "/")+1:]
	if len(payload) == 0 {
		return model.Withdrawn{Key: key}, nil
	}

	var shape model.Shape
	if err := json.Unmarshal(payload, &shape); err != nil {
		return nil, fmt.Errorf("%w on %s: %s", ErrMalformedSample, topic, err)
	}
	if shape.Color == "" {
		shape.Color = key
	}
	if shape.Color != key {
		return nil, fmt.Errorf("%w on %s: color %q does not match the instance", ErrMalformedSample, topic, shape.Color)
	}
	return model.Value{Shape: shape}, nil
}
