/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/transform

/*****************************************************************************************************************/

// Package transform provides the 2D affine fit the frame generator uses to
// interpolate ray directions across a coarse pixel grid (the
// InterpolatingRectilinear mode): exact azimuth/elevation pairs are computed
// at sparse grid corners, and every interior pixel's direction is recovered
// by evaluating the affine map fit to that cell instead of re-running the
// pinhole projection per pixel.
package transform

/*****************************************************************************************************************/

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

/*****************************************************************************************************************/

// Affine2DParameters represents the parameters of a 2D affine transformation
// from a pixel coordinate (x, y) to a target 2-vector (x', y'):
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Affine2DParameters struct {
	A, B, C float64 // Transformation for X: x' = A*x + B*y + C
	D, E, F float64 // Transformation for Y: y' = D*x + E*y + F
}

/*****************************************************************************************************************/

// Apply evaluates the affine map at pixel coordinate (x, y).
func (p Affine2DParameters) Apply(x, y float64) (xp, yp float64) {
	return p.A*x + p.B*y + p.C, p.D*x + p.E*y + p.F
}

/*****************************************************************************************************************/

// SolveAffine2D fits the unique affine map taking each pixel coordinate
// px[i] to its target vector pv[i], for exactly three non-collinear
// correspondences. This is the three-corner fit InterpolatingRectilinear
// uses per coarse grid cell: the cell's top-left, top-right and bottom-left
// corners carry exactly-computed (azimuth, elevation) pairs, and this map
// reproduces them exactly while interpolating everywhere else in the cell.
func SolveAffine2D(px [3][2]float64, pv [3][2]float64) (Affine2DParameters, error) {
	m := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		m.Set(i, 0, px[i][0])
		m.Set(i, 1, px[i][1])
		m.Set(i, 2, 1)
	}

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Affine2DParameters{}, fmt.Errorf("transform: corners are collinear: %w", err)
	}

	bx := mat.NewVecDense(3, []float64{pv[0][0], pv[1][0], pv[2][0]})
	by := mat.NewVecDense(3, []float64{pv[0][1], pv[1][1], pv[2][1]})

	var coefX, coefY mat.VecDense
	coefX.MulVec(&inv, bx)
	coefY.MulVec(&inv, by)

	return Affine2DParameters{
		A: coefX.AtVec(0), B: coefX.AtVec(1), C: coefX.AtVec(2),
		D: coefY.AtVec(0), E: coefY.AtVec(1), F: coefY.AtVec(2),
	}, nil
}

/*****************************************************************************************************************/
