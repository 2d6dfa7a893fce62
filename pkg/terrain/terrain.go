/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/terrain

/*****************************************************************************************************************/

// Package terrain detects the first terrain crossing along a ray segment,
// walking only the DEM cells the segment actually touches and testing each
// cell's two triangles analytically.
package terrain

/*****************************************************************************************************************/

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/terrainscope/terrainscope/pkg/dem"
	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/ray"
)

/*****************************************************************************************************************/

// Hit is the first terrain crossing found along a segment. S is the
// horizontal arc distance from the observer at the hit, D the ray's
// cumulative path length (the two differ by the vertical component and any
// refraction bending).
type Hit struct {
	Lat, Lon, H, S, D float64
}

/*****************************************************************************************************************/

// Result classifies what happened along one segment.
type Result struct {
	Hit          *Hit
	BelowTerrain bool // both endpoints below terrain: the ray is aborted
}

/*****************************************************************************************************************/

const earthRadiusForLocalFrame = 6371000.0

/*****************************************************************************************************************/

// Intersector tests ray segments against the DEM served by Cache. Hint is
// this Intersector's own hot-tile pointer: every DEM lookup it makes goes
// through Cache.HeightHinted, so an Intersector that stays with one render
// worker for its whole tile skips Cache's lock on every query that lands
// in the tile it already holds.
type Intersector struct {
	Cache *dem.Cache
	Hint  dem.TileHint
}

/*****************************************************************************************************************/

// Test classifies segment seg against the terrain. It first samples
// terrain height at the two endpoints; if both are on the same side of the
// ray, there is no crossing in this segment (or the ray is aborted, if both
// are below). Otherwise it refines the crossing by walking the DEM cells
// the segment crosses and testing each one's two triangles.
func (it *Intersector) Test(seg ray.Segment) Result {
	startTerrain := it.Cache.HeightHinted(seg.Start.Phi.Lat, seg.Start.Phi.Lon, &it.Hint)
	endTerrain := it.Cache.HeightHinted(seg.End.Phi.Lat, seg.End.Phi.Lon, &it.Hint)

	da := seg.Start.Phi.Alt - startTerrain
	db := seg.End.Phi.Alt - endTerrain

	if da >= 0 && db >= 0 {
		return Result{}
	}
	if da < 0 && db < 0 {
		return Result{BelowTerrain: true}
	}

	if hit, ok := it.refineByCellTraversal(seg); ok {
		return Result{Hit: &hit}
	}

	// Fallback: linear interpolation between the endpoints finds the first
	// sign change even if the triangle walk above found nothing (e.g. a
	// tile boundary degenerate case).
	tau := da / (da - db)
	return Result{Hit: &Hit{
		Lat: lerp(seg.Start.Phi.Lat, seg.End.Phi.Lat, tau),
		Lon: lerp(seg.Start.Phi.Lon, seg.End.Phi.Lon, tau),
		H:   lerp(seg.Start.Phi.Alt, seg.End.Phi.Alt, tau),
		S:   lerp(seg.Start.S, seg.End.S, tau),
		D:   lerp(seg.Start.D, seg.End.D, tau),
	}}
}

/*****************************************************************************************************************/

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

/*****************************************************************************************************************/

// localFrame converts a geographic point into meters-east/meters-north
// Cartesian coordinates relative to origin, using an equirectangular
// approximation valid over the short span of a single integration step.
func localFrame(origin, p geodesy.Point) r3.Vec {
	dLat := (p.Lat - origin.Lat) * geodesy.DegToRad
	dLon := (p.Lon - origin.Lon) * geodesy.DegToRad
	north := dLat * earthRadiusForLocalFrame
	east := dLon * earthRadiusForLocalFrame * math.Cos(origin.Lat*geodesy.DegToRad)
	return r3.Vec{X: east, Y: north, Z: p.Alt}
}

/*****************************************************************************************************************/

// refineByCellTraversal walks the integer-degree DEM cells between the
// segment's endpoints (Bresenham-style on the lat/lon grid) and tests each
// visited cell's two triangles against the segment, returning the crossing
// nearest the segment's start.
func (it *Intersector) refineByCellTraversal(seg ray.Segment) (Hit, bool) {
	origin := seg.Start.Phi
	start := localFrame(origin, seg.Start.Phi)
	end := localFrame(origin, geodesy.Point{Lat: seg.End.Phi.Lat, Lon: seg.End.Phi.Lon, Alt: seg.End.Phi.Alt})

	dir := r3.Sub(end, start)
	length := r3.Norm(dir)
	if length == 0 {
		return Hit{}, false
	}
	dir = r3.Scale(1/length, dir)

	bestT := math.Inf(1)
	var bestLat, bestLon, bestH float64
	found := false

	for _, cell := range cellsCrossed(seg.Start.Phi.Lat, seg.Start.Phi.Lon, seg.End.Phi.Lat, seg.End.Phi.Lon) {
		latFloor, lonFloor := cell[0], cell[1]

		sw := geodesy.Point{Lat: float64(latFloor), Lon: float64(lonFloor)}
		se := geodesy.Point{Lat: float64(latFloor), Lon: float64(lonFloor + 1)}
		nw := geodesy.Point{Lat: float64(latFloor + 1), Lon: float64(lonFloor)}
		ne := geodesy.Point{Lat: float64(latFloor + 1), Lon: float64(lonFloor + 1)}

		swV := localFrame(origin, withHeight(sw, it.Cache.HeightHinted(sw.Lat, sw.Lon, &it.Hint)))
		seV := localFrame(origin, withHeight(se, it.Cache.HeightHinted(se.Lat, se.Lon, &it.Hint)))
		nwV := localFrame(origin, withHeight(nw, it.Cache.HeightHinted(nw.Lat, nw.Lon, &it.Hint)))
		neV := localFrame(origin, withHeight(ne, it.Cache.HeightHinted(ne.Lat, ne.Lon, &it.Hint)))

		for _, tri := range [][3]r3.Vec{{swV, seV, neV}, {swV, neV, nwV}} {
			if t, ok := intersectTriangle(start, dir, tri); ok && t >= 0 && t <= length && t < bestT {
				bestT = t
				hitPoint := r3.Add(start, r3.Scale(t, dir))
				bestLat, bestLon, bestH = cartesianToGeo(origin, hitPoint)
				found = true
			}
		}
	}

	if !found {
		return Hit{}, false
	}

	tau := bestT / length
	return Hit{
		Lat: bestLat,
		Lon: bestLon,
		H:   bestH,
		S:   lerp(seg.Start.S, seg.End.S, tau),
		D:   lerp(seg.Start.D, seg.End.D, tau),
	}, true
}

/*****************************************************************************************************************/

func withHeight(p geodesy.Point, h float64) geodesy.Point {
	p.Alt = h
	return p
}

/*****************************************************************************************************************/

func cartesianToGeo(origin geodesy.Point, v r3.Vec) (lat, lon, h float64) {
	dLat := v.Y / earthRadiusForLocalFrame
	dLon := v.X / (earthRadiusForLocalFrame * math.Cos(origin.Lat*geodesy.DegToRad))
	return origin.Lat + dLat*geodesy.RadToDeg, origin.Lon + dLon*geodesy.RadToDeg, v.Z
}

/*****************************************************************************************************************/

// cellsCrossed returns the whole-degree (lat,lon) cells visited walking
// from (lat0,lon0) to (lat1,lon1), deduplicated in order, approximating a
// true Bresenham walk by sampling along the segment at a resolution finer
// than one cell.
func cellsCrossed(lat0, lon0, lat1, lon1 float64) [][2]int {
	steps := int(math.Max(math.Abs(lat1-lat0), math.Abs(lon1-lon0))*4) + 1
	var cells [][2]int
	var last [2]int
	haveLast := false
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		lat := lerp(lat0, lat1, t)
		lon := lerp(lon0, lon1, t)
		latFloor, lonFloor := dem.Floor(lat, lon)
		cell := [2]int{latFloor, lonFloor}
		if !haveLast || cell != last {
			cells = append(cells, cell)
			last = cell
			haveLast = true
		}
	}
	return cells
}

/*****************************************************************************************************************/

// intersectTriangle is the Möller–Trumbore ray/triangle test.
func intersectTriangle(origin, dir r3.Vec, tri [3]r3.Vec) (t float64, ok bool) {
	const epsilon = 1e-9

	edge1 := r3.Sub(tri[1], tri[0])
	edge2 := r3.Sub(tri[2], tri[0])
	h := r3.Cross(dir, edge2)
	det := r3.Dot(edge1, h)
	if det > -epsilon && det < epsilon {
		return 0, false
	}
	invDet := 1 / det
	s := r3.Sub(origin, tri[0])
	u := invDet * r3.Dot(s, h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := r3.Cross(s, edge1)
	v := invDet * r3.Dot(dir, q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t = invDet * r3.Dot(edge2, q)
	if t < 0 {
		return 0, false
	}
	return t, true
}
