// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

import "fmt"

// ShapeTypeName is the registered type name of the shapes topic.
const ShapeTypeName = "ShapeType"

// Shape is the keyed sample exchanged on the shapes topic. Color is the
// instance key and never changes once the shape is created.
type Shape struct {
	Color     string `json:"color"`
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	ShapeSize int32  `json:"shapesize"`
}

// Key returns the instance key of the shape.
func (s Shape) Key() string {
	return s.Color
}

func (s Shape) String() string {
	return fmt.Sprintf("%s(%d,%d)[%d]", s.Color, s.X, s.Y, s.ShapeSize)
}

// Velocity is the per-tick displacement of a published shape.
type Velocity struct {
	XV int32
	YV int32
}
