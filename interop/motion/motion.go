// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package motion moves a published shape around the drawing area.
package motion

import (
	"go.shapes.dev/interop/model"
)

// Drawing area used by the shapes demo applications.
const (
	Width  int32 = 240
	Height int32 = 270
)

// Advance moves the shape by one velocity step and reflects it off the edges
// of the drawing area. Each axis is checked on its own, so a corner hit flips
// both velocity components in the same call.
func Advance(shape model.Shape, v model.Velocity) (model.Shape, model.Velocity) {
	half := shape.ShapeSize/2 + 1

	x, xv := bounce(shape.X+v.XV, v.XV, half, Width)
	y, yv := bounce(shape.Y+v.YV, v.YV, half, Height)

	return model.Shape{Color: shape.Color, X: x, Y: y, ShapeSize: shape.ShapeSize},
		model.Velocity{XV: xv, YV: yv}
}

func bounce(pos, vel, half, limit int32) (int32, int32) {
	lo, hi := half, limit-half

	// shape is wider than the axis itself: park it in the middle
	if lo > hi {
		return limit / 2, vel
	}

	if pos < lo {
		pos = lo
		vel = -vel
	}
	if pos > hi {
		pos = hi
		vel = -vel
	}
	return pos, vel
}
