/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/geodesy

/*****************************************************************************************************************/

// Package geodesy maps geographic positions to the model-local ray
// parameterization used by the propagator, for each of the four supported
// Earth-shape variants.
package geodesy

/*****************************************************************************************************************/

import (
	"math"
)

/*****************************************************************************************************************/

const (
	DegToRad = math.Pi / 180
	RadToDeg = 180 / math.Pi
)

/*****************************************************************************************************************/

// EarthRadiusMean is used by consumers (scene object tests via LocalENU)
// that need a flat local tangent-plane approximation over a span
// short enough that the choice of Earth-shape model doesn't matter.
const EarthRadiusMean = 6371000.0

/*****************************************************************************************************************/

// LocalENU converts p into meters-east/meters-north/meters-up Cartesian
// coordinates relative to origin, using an equirectangular approximation
// valid over spans of a few kilometers.
func LocalENU(origin, p Point) (east, north, up float64) {
	dLat := (p.Lat - origin.Lat) * DegToRad
	dLon := (p.Lon - origin.Lon) * DegToRad
	north = dLat * EarthRadiusMean
	east = dLon * EarthRadiusMean * math.Cos(origin.Lat*DegToRad)
	up = p.Alt - origin.Alt
	return east, north, up
}

/*****************************************************************************************************************/

// Point is a geographic position. Alt is meters above mean sea level once
// resolved; callers may construct it with a terrain-relative altitude and
// resolve it via ResolveAltitude before it is used by the propagator.
type Point struct {
	Lat float64 // degrees
	Lon float64 // degrees
	Alt float64 // meters, MSL
}

/*****************************************************************************************************************/

// ResolveAltitude turns a terrain-relative altitude into an absolute one
// given the terrain height under the point.
func (p Point) ResolveAltitude(terrainHeight float64, relative bool) Point {
	if !relative {
		return p
	}
	p.Alt = terrainHeight + p.Alt
	return p
}

/*****************************************************************************************************************/

// EarthShape is a closed set of Earth geometry models. Callers dispatch
// through this interface's methods, never by interface embedding of
// behavior beyond this contract.
type EarthShape interface {
	// Advance moves pos0 by arc length arcS along azimuth (degrees from
	// north, increasing eastward) and returns the resulting position.
	Advance(pos0 Point, azimuthDeg, arcS float64) Point

	// SurfaceSlopeFactor returns 1+h/R for spherical models, 1 for flat
	// models. It appears in the ray ODE's geometric terms.
	SurfaceSlopeFactor(h float64) float64

	// Radius returns the model's effective Earth radius, or math.Inf(1)
	// for flat models (the ray ODE's curvature term vanishes in that case).
	Radius() float64
}

/*****************************************************************************************************************/

// GreatCircleAzimuth returns the initial bearing (degrees, 0=north,
// increasing eastward) of the great-circle / straight path from pos0 to pos.
func GreatCircleAzimuth(pos0, pos Point) float64 {
	lat1, lat2 := pos0.Lat*DegToRad, pos.Lat*DegToRad
	dLon := (pos.Lon - pos0.Lon) * DegToRad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	az := math.Atan2(y, x) * RadToDeg
	return math.Mod(az+360, 360)
}

/*****************************************************************************************************************/

// Spherical is the standard sphere Earth-shape model of radius R meters.
type Spherical struct {
	R float64
}

/*****************************************************************************************************************/

func (s Spherical) Radius() float64 { return s.R }

/*****************************************************************************************************************/

func (s Spherical) SurfaceSlopeFactor(h float64) float64 {
	return 1 + h/s.R
}

/*****************************************************************************************************************/

// Advance solves the direct geodetic problem on a sphere: given a starting
// point, initial bearing and arc length, find the destination.
func (s Spherical) Advance(pos0 Point, azimuthDeg, arcS float64) Point {
	return sphericalAdvance(pos0, azimuthDeg, arcS, s.R)
}

/*****************************************************************************************************************/

// AzimuthalEquidistant uses the same globe geometry as Spherical for the
// ray ODE; the projection only distorts how ticks/azimuths are drawn, not
// the physical position computation, so Advance is identical.
type AzimuthalEquidistant struct {
	R float64
}

/*****************************************************************************************************************/

func (a AzimuthalEquidistant) Radius() float64 { return a.R }

/*****************************************************************************************************************/

func (a AzimuthalEquidistant) SurfaceSlopeFactor(h float64) float64 {
	return 1 + h/a.R
}

/*****************************************************************************************************************/

func (a AzimuthalEquidistant) Advance(pos0 Point, azimuthDeg, arcS float64) Point {
	return sphericalAdvance(pos0, azimuthDeg, arcS, a.R)
}

/*****************************************************************************************************************/

func sphericalAdvance(pos0 Point, azimuthDeg, arcS, r float64) Point {
	lat1 := pos0.Lat * DegToRad
	az := azimuthDeg * DegToRad
	delta := arcS / r

	sinLat1, cosLat1 := math.Sin(lat1), math.Cos(lat1)
	sinDelta, cosDelta := math.Sin(delta), math.Cos(delta)

	lat2 := math.Asin(sinLat1*cosDelta + cosLat1*sinDelta*math.Cos(az))
	lon2 := pos0.Lon*DegToRad + math.Atan2(
		math.Sin(az)*sinDelta*cosLat1,
		cosDelta-sinLat1*math.Sin(lat2),
	)

	return Point{Lat: lat2 * RadToDeg, Lon: lon2 * RadToDeg, Alt: pos0.Alt}
}

/*****************************************************************************************************************/

// FlatSpherical walks a straight Cartesian light path but keeps
// spherical-Earth arc length for the (lat,lon)<->s mapping.
type FlatSpherical struct {
	R float64
}

/*****************************************************************************************************************/

func (f FlatSpherical) Radius() float64 { return math.Inf(1) }

/*****************************************************************************************************************/

func (f FlatSpherical) SurfaceSlopeFactor(h float64) float64 { return 1 }

/*****************************************************************************************************************/

func (f FlatSpherical) Advance(pos0 Point, azimuthDeg, arcS float64) Point {
	return sphericalAdvance(pos0, azimuthDeg, arcS, f.R)
}

/*****************************************************************************************************************/

// FlatDistorted interprets (s, azimuth) as Cartesian offsets, scaling the
// east (longitude) component by cos(lat0), same straight light paths as
// FlatSpherical.
type FlatDistorted struct {
	R float64
}

/*****************************************************************************************************************/

func (f FlatDistorted) Radius() float64 { return math.Inf(1) }

/*****************************************************************************************************************/

func (f FlatDistorted) SurfaceSlopeFactor(h float64) float64 { return 1 }

/*****************************************************************************************************************/

func (f FlatDistorted) Advance(pos0 Point, azimuthDeg, arcS float64) Point {
	az := azimuthDeg * DegToRad
	north := arcS * math.Cos(az)
	east := arcS * math.Sin(az)

	lat0 := pos0.Lat * DegToRad
	dLat := north / f.R
	dLon := east / (f.R * math.Cos(lat0))

	return Point{
		Lat: pos0.Lat + dLat*RadToDeg,
		Lon: pos0.Lon + dLon*RadToDeg,
		Alt: pos0.Alt,
	}
}

/*****************************************************************************************************************/

// ChordToArc converts a straight-line chord distance between two points on
// a sphere of radius r into the arc distance along the sphere's surface. Used when reconciling flat-model ray geometry against a
// spherical geographic grid.
func ChordToArc(chord, r float64) float64 {
	// 2*R*asin(chord/2R) is the exact arc-to-chord relation.
	ratio := chord / (2 * r)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < -1 {
		ratio = -1
	}
	return 2 * r * math.Asin(ratio)
}

/*****************************************************************************************************************/

// ArcToChord is the inverse of ChordToArc.
func ArcToChord(arc, r float64) float64 {
	return 2 * r * math.Sin(arc/(2*r))
}
