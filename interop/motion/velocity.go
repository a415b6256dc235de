// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package motion

import (
	"math/rand/v2"

	"go.shapes.dev/interop/model"
)

// InitialShapeSize is the diameter of a freshly published shape.
const InitialShapeSize int32 = 21

// NewShape returns the shape a publisher starts from.
func NewShape(color string) model.Shape {
	return model.Shape{Color: color, X: 0, Y: 0, ShapeSize: InitialShapeSize}
}

// NewVelocity draws a random velocity. Each component is either in [1,4] or
// in [-5,-2], so neither can be zero.
func NewVelocity(r *rand.Rand) model.Velocity {
	return model.Velocity{XV: component(r), YV: component(r)}
}

func component(r *rand.Rand) int32 {
	if r.IntN(2) == 0 {
		return 1 + r.Int32N(4)
	}
	return -5 + r.Int32N(4)
}
