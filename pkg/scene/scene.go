/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/scene

/*****************************************************************************************************************/

// Package scene tests ray segments against user-placed billboards and
// cylinders. Every object first offers a cheap bounding-cylinder rejection
// test; only a segment that survives it pays for the exact primitive
// intersection.
package scene

/*****************************************************************************************************************/

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/ray"
)

/*****************************************************************************************************************/

// Hit is a scene-object crossing along a ray segment. S is the horizontal
// arc distance from the observer at the hit, D the ray's cumulative path
// length.
type Hit struct {
	S, D        float64
	Lat, Lon, H float64
	R, G, B, A  float64 // alpha in [0,1]
}

/*****************************************************************************************************************/

// Bounds is the cheap bounding cylinder every Object exposes for the
// pretest: a vertical cylinder of radius RadiusMax spanning [HMin, HMax]
// MSL, centered horizontally on Center.
type Bounds struct {
	Center     geodesy.Point
	RadiusMax  float64
	HMin, HMax float64
}

/*****************************************************************************************************************/

// Object is the closed set of scene primitives: Billboard and Cylinder.
type Object interface {
	Bounds() Bounds

	// TestSegment tests ray segment seg, traced from observer, against the
	// exact primitive. Callers must have already passed seg through
	// BoundingCylinderHit(Bounds(), seg); TestSegment does not re-check it.
	TestSegment(seg ray.Segment, observer geodesy.Point) (Hit, bool)
}

/*****************************************************************************************************************/

// toLocal converts p into a meters-east(X)/north(Y)/up(Z) r3.Vec relative to
// origin, the same segment/vector-algebra representation pkg/terrain and
// pkg/frame use for ray geometry.
func toLocal(origin, p geodesy.Point) r3.Vec {
	e, n, u := geodesy.LocalENU(origin, p)
	return r3.Vec{X: e, Y: n, Z: u}
}

/*****************************************************************************************************************/

// BoundingCylinderHit is the shared pretest every caller (the pixel
// pipeline) runs before TestSegment: does the segment's bounding box come
// anywhere near the object's bounding cylinder?
func BoundingCylinderHit(b Bounds, seg ray.Segment) bool {
	startH, endH := seg.Start.Phi.Alt, seg.End.Phi.Alt
	lo, hi := startH, endH
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi < b.HMin || lo > b.HMax {
		return false
	}

	start := toLocal(b.Center, seg.Start.Phi)
	end := toLocal(b.Center, seg.End.Phi)

	// Closest approach of the 2D (east,north) segment to the origin.
	dE, dN := end.X-start.X, end.Y-start.Y
	segLenSq := dE*dE + dN*dN
	if segLenSq == 0 {
		return math.Hypot(start.X, start.Y) <= b.RadiusMax
	}
	t := -(start.X*dE + start.Y*dN) / segLenSq
	t = clamp01(t)
	closeE := start.X + t*dE
	closeN := start.Y + t*dN
	return math.Hypot(closeE, closeN) <= b.RadiusMax
}

/*****************************************************************************************************************/

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

/*****************************************************************************************************************/

// Cylinder is an upright finite cylinder of the given radius and height
// (meters, from the terrain-relative base implied by Center.Alt), carrying
// a flat RGBA color.
type Cylinder struct {
	Center         geodesy.Point
	Radius, Height float64
	Color          color.RGBA
}

/*****************************************************************************************************************/

func (c Cylinder) Bounds() Bounds {
	return Bounds{Center: c.Center, RadiusMax: c.Radius, HMin: c.Center.Alt, HMax: c.Center.Alt + c.Height}
}

/*****************************************************************************************************************/

// TestSegment solves the 3D segment against the upright cylinder
// x^2+y^2=R^2, 0<=u<=Height in the object's local frame.
func (c Cylinder) TestSegment(seg ray.Segment, _ geodesy.Point) (Hit, bool) {
	start := toLocal(c.Center, seg.Start.Phi)
	end := toLocal(c.Center, seg.End.Phi)
	dir := r3.Sub(end, start)

	a := dir.X*dir.X + dir.Y*dir.Y
	b := 2 * (start.X*dir.X + start.Y*dir.Y)
	cc := start.X*start.X + start.Y*start.Y - c.Radius*c.Radius

	var candidates []float64
	if a < 1e-12 {
		// Segment runs parallel to the cylinder's axis: no lateral crossing
		// to solve for, only entry through the caps, which the altitude
		// candidates below never produce.
	} else {
		disc := b*b - 4*a*cc
		if disc >= 0 {
			sq := math.Sqrt(disc)
			candidates = append(candidates, (-b-sq)/(2*a), (-b+sq)/(2*a))
		}
	}

	bestT := math.Inf(1)
	found := false
	for _, t := range candidates {
		if t < 0 || t > 1 {
			continue
		}
		u := start.Z + t*dir.Z
		if u < 0 || u > c.Height {
			continue
		}
		if t < bestT {
			bestT, found = t, true
		}
	}
	if !found {
		return Hit{}, false
	}

	hitLocal := r3.Add(start, r3.Scale(bestT, dir))
	lat, lon, h := fromLocal(c.Center, hitLocal)
	return Hit{
		S: lerp(seg.Start.S, seg.End.S, bestT),
		D: lerp(seg.Start.D, seg.End.D, bestT),
		Lat: lat, Lon: lon, H: h,
		R: float64(c.Color.R) / 255, G: float64(c.Color.G) / 255, B: float64(c.Color.B) / 255,
		A: float64(c.Color.A) / 255,
	}, true
}

/*****************************************************************************************************************/

// Billboard is an axis-aligned rectangle standing vertically, always
// rotated about its vertical axis to face the observer, textured with
// nearest-neighbor sampling.
type Billboard struct {
	Center        geodesy.Point
	Width, Height float64
	Texture       *Texture
}

/*****************************************************************************************************************/

func (b Billboard) Bounds() Bounds {
	diag := b.Width / 2
	return Bounds{Center: b.Center, RadiusMax: diag, HMin: b.Center.Alt, HMax: b.Center.Alt + b.Height}
}

/*****************************************************************************************************************/

// TestSegment intersects seg with the vertical plane through Center whose
// horizontal normal points at observer.
func (b Billboard) TestSegment(seg ray.Segment, observer geodesy.Point) (Hit, bool) {
	start := toLocal(b.Center, seg.Start.Phi)
	end := toLocal(b.Center, seg.End.Phi)
	obs := toLocal(b.Center, observer)

	// The billboard's facing normal is the horizontal direction from the
	// billboard to the observer; its in-plane "right" axis is perpendicular
	// to that, in the horizontal plane.
	normLen := math.Hypot(obs.X, obs.Y)
	if normLen < 1e-9 {
		return Hit{}, false
	}
	nx, ny := obs.X/normLen, obs.Y/normLen
	rx, ry := -ny, nx // right axis, 90 degrees from the facing normal

	// Project the segment endpoints onto (right, up, depth-along-normal).
	startRight := start.X*rx + start.Y*ry
	startDepth := start.X*nx + start.Y*ny
	endRight := end.X*rx + end.Y*ry
	endDepth := end.X*nx + end.Y*ny

	if (startDepth > 0) == (endDepth > 0) {
		return Hit{}, false // segment doesn't cross the billboard's plane
	}
	t := startDepth / (startDepth - endDepth)
	if t < 0 || t > 1 {
		return Hit{}, false
	}

	right := startRight + t*(endRight-startRight)
	up := start.Z + t*(end.Z-start.Z)

	half := b.Width / 2
	if right < -half || right > half || up < 0 || up > b.Height {
		return Hit{}, false
	}

	u := (right + half) / b.Width
	v := 1 - up/b.Height

	r, g, bl, a, ok := b.Texture.Sample(u, v)
	if !ok || a == 0 {
		return Hit{}, false
	}

	hitLocal := r3.Add(start, r3.Scale(t, r3.Sub(end, start)))
	lat, lon, h := fromLocal(b.Center, hitLocal)
	return Hit{
		S: lerp(seg.Start.S, seg.End.S, t),
		D: lerp(seg.Start.D, seg.End.D, t),
		Lat: lat, Lon: lon, H: h, R: r, G: g, B: bl, A: a,
	}, true
}

/*****************************************************************************************************************/

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

/*****************************************************************************************************************/

func fromLocal(origin geodesy.Point, l r3.Vec) (lat, lon, h float64) {
	dLat := l.Y / geodesy.EarthRadiusMean
	dLon := l.X / (geodesy.EarthRadiusMean * math.Cos(origin.Lat*geodesy.DegToRad))
	return origin.Lat + dLat*geodesy.RadToDeg, origin.Lon + dLon*geodesy.RadToDeg, origin.Alt + l.Z
}

/*****************************************************************************************************************/
