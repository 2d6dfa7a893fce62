/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/frame

/*****************************************************************************************************************/

package frame

/*****************************************************************************************************************/

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/transform"
)

/*****************************************************************************************************************/

// dirFromAzEl converts a compass azimuth and elevation angle (both degrees)
// into a unit direction vector in local east/north/up coordinates.
func dirFromAzEl(azDeg, elDeg float64) r3.Vec {
	az := azDeg * geodesy.DegToRad
	el := elDeg * geodesy.DegToRad
	return r3.Vec{X: math.Sin(az) * math.Cos(el), Y: math.Cos(az) * math.Cos(el), Z: math.Sin(el)}
}

/*****************************************************************************************************************/

// azElFromDir is dirFromAzEl's inverse.
func azElFromDir(v r3.Vec) (azDeg, elDeg float64) {
	az := math.Atan2(v.X, v.Y) * geodesy.RadToDeg
	az = math.Mod(az+360, 360)
	el := math.Asin(clampUnit(v.Z/r3.Norm(v))) * geodesy.RadToDeg
	return az, el
}

/*****************************************************************************************************************/

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

/*****************************************************************************************************************/

// cameraBasis builds the pinhole camera's right and up axes for a view
// centered on (azimuthDeg, elevationDeg), keeping the horizon level (no
// roll).
func cameraBasis(azimuthDeg, elevationDeg float64) (forward, right, up r3.Vec) {
	forward = dirFromAzEl(azimuthDeg, elevationDeg)
	worldUp := r3.Vec{Z: 1}
	if math.Abs(forward.Z) > 0.9999 {
		worldUp = r3.Vec{Y: 1} // looking straight up/down: pick an arbitrary level reference
	}
	right = normalize(r3.Cross(forward, worldUp))
	up = normalize(r3.Cross(right, forward))
	return forward, right, up
}

/*****************************************************************************************************************/

func normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return v
	}
	return r3.Scale(1/n, v)
}

/*****************************************************************************************************************/

// fastDirection implements the Fast generator mode: per-column azimuth and per-row elevation computed independently
// (cylindrical equirectangular projection).
func fastDirection(cfg ViewConfig, col, row int) (azDeg, elDeg float64) {
	vFOV := cfg.FOVDeg * float64(cfg.Height) / float64(cfg.Width)

	az := cfg.AzimuthDeg - cfg.FOVDeg/2 + cfg.FOVDeg*(float64(col)+0.5)/float64(cfg.Width)
	el := cfg.ElevationDeg + vFOV/2 - vFOV*(float64(row)+0.5)/float64(cfg.Height)

	return math.Mod(az+360, 360), el
}

/*****************************************************************************************************************/

// rectilinearDirection implements the Rectilinear generator mode: a true
// pinhole-camera direction vector for (col, row),
// converted back to (azimuth, elevation).
func rectilinearDirection(cfg ViewConfig, col, row int) (azDeg, elDeg float64) {
	forward, right, up := cameraBasis(cfg.AzimuthDeg, cfg.ElevationDeg)

	aspect := float64(cfg.Width) / float64(cfg.Height)
	halfFOVX := cfg.FOVDeg / 2 * geodesy.DegToRad
	halfFOVY := math.Atan(math.Tan(halfFOVX) / aspect)

	ndcX := (float64(col)+0.5)/float64(cfg.Width)*2 - 1
	ndcY := 1 - (float64(row)+0.5)/float64(cfg.Height)*2

	dir := r3.Add(forward, r3.Add(
		r3.Scale(ndcX*math.Tan(halfFOVX), right),
		r3.Scale(ndcY*math.Tan(halfFOVY), up),
	))
	return azElFromDir(normalize(dir))
}

/*****************************************************************************************************************/

// interpGrid precomputes exact rectilinear directions on a coarse grid and
// the per-cell affine fit used to interpolate every interior pixel, the
// InterpolatingRectilinear mode.
type interpGrid struct {
	cfg    ViewConfig
	step   int
	cellsX int
	cellsY int
	fits   []transform.Affine2DParameters
}

/*****************************************************************************************************************/

func newInterpGrid(cfg ViewConfig) *interpGrid {
	step := cfg.CoarseStep
	if step < 1 {
		step = 8
	}

	cellsX := (cfg.Width + step - 1) / step
	cellsY := (cfg.Height + step - 1) / step

	g := &interpGrid{cfg: cfg, step: step, cellsX: cellsX, cellsY: cellsY}
	g.fits = make([]transform.Affine2DParameters, cellsX*cellsY)

	exact := func(x, y int) (float64, float64) {
		if x > cfg.Width {
			x = cfg.Width
		}
		if y > cfg.Height {
			y = cfg.Height
		}
		return rectilinearDirection(cfg, x, y)
	}

	for cy := 0; cy < cellsY; cy++ {
		for cx := 0; cx < cellsX; cx++ {
			x0, y0 := cx*step, cy*step
			x1, y1 := x0+step, y0+step

			azTL, elTL := exact(x0, y0)
			azTR, elTR := exact(x1, y0)
			azBL, elBL := exact(x0, y1)

			px := [3][2]float64{{float64(x0), float64(y0)}, {float64(x1), float64(y0)}, {float64(x0), float64(y1)}}
			pv := [3][2]float64{{azTL, elTL}, {unwrap(azTL, azTR), elTR}, {unwrap(azTL, azBL), elBL}}

			fit, err := transform.SolveAffine2D(px, pv)
			if err != nil {
				// Degenerate cell (does not happen for a non-degenerate
				// step): fall back to a constant fit that returns the
				// cell's top-left exact direction for every pixel in it.
				fit = transform.Affine2DParameters{C: azTL, F: elTL}
			}
			g.fits[cy*cellsX+cx] = fit
		}
	}
	return g
}

/*****************************************************************************************************************/

// unwrap adjusts az2 by a multiple of 360 so it lies within 180 degrees of
// az1, keeping an affine fit valid across the 0/360 azimuth wrap.
func unwrap(az1, az2 float64) float64 {
	for az2-az1 > 180 {
		az2 -= 360
	}
	for az2-az1 < -180 {
		az2 += 360
	}
	return az2
}

/*****************************************************************************************************************/

func (g *interpGrid) direction(col, row int) (azDeg, elDeg float64) {
	cx := col / g.step
	cy := row / g.step
	if cx >= g.cellsX {
		cx = g.cellsX - 1
	}
	if cy >= g.cellsY {
		cy = g.cellsY - 1
	}
	az, el := g.fits[cy*g.cellsX+cx].Apply(float64(col), float64(row))
	return math.Mod(az+360, 360), el
}

/*****************************************************************************************************************/
