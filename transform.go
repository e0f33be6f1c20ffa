// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package tinycart

import "math"

// Matrix is a 2D affine transform in row-major 2x3 form:
//
//	| A  B  C |
//	| D  E  F |
//
// mapping (x, y) to (A*x + B*y + C, D*x + E*y + F).
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// FromCanvas converts a transform given in canvas argument order
// (a=m11, b=m12, c=m21, d=m22, e=dx, f=dy) to a Matrix.
func FromCanvas(a, b, c, d, e, f float64) Matrix {
	return Matrix{A: a, B: c, C: e, D: b, E: d, F: f}
}

// Mul returns m * n, so n is applied first.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.D,
		B: m.A*n.B + m.B*n.E,
		C: m.A*n.C + m.B*n.F + m.C,
		D: m.D*n.A + m.E*n.D,
		E: m.D*n.B + m.E*n.E,
		F: m.D*n.C + m.E*n.F + m.F,
	}
}

// Translate returns m translated by (x, y) in local coordinates.
func (m Matrix) Translate(x, y float64) Matrix {
	return m.Mul(Matrix{A: 1, C: x, E: 1, F: y})
}

// Scale returns m scaled by (sx, sy) in local coordinates.
func (m Matrix) Scale(sx, sy float64) Matrix {
	return m.Mul(Matrix{A: sx, E: sy})
}

// Rotate returns m rotated by angle radians in local coordinates.
func (m Matrix) Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return m.Mul(Matrix{A: cos, B: -sin, D: sin, E: cos})
}

// Apply transforms a point.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// IsIdentity reports whether m is exactly the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
