/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/shading

/*****************************************************************************************************************/

// Package shading converts (elevation, normal) into an RGB pixel
// color: a flat elevation-ramped palette, or the same ramp
// modulated by a directional-light intensity estimated from DEM finite
// differences.
package shading

/*****************************************************************************************************************/

import (
	"math"

	"github.com/terrainscope/terrainscope/pkg/dem"
)

/*****************************************************************************************************************/

// Normal is a unit surface normal in local east/north/up coordinates.
type Normal struct{ E, N, U float64 }

/*****************************************************************************************************************/

// Coloring is the closed set of terrain coloring strategies.
type Coloring interface {
	// Shade returns the RGB color (each channel in [0,1]) for a terrain hit
	// at the given elevation (meters MSL) and estimated surface normal.
	Shade(elevation float64, normal Normal) (r, g, b float64)
}

/*****************************************************************************************************************/

// Simple is an elevation-ramped palette with a flat blue below WaterLevel.
type Simple struct {
	WaterLevel float64
}

/*****************************************************************************************************************/

func (s Simple) Shade(elevation float64, _ Normal) (r, g, b float64) {
	return elevationRamp(elevation, s.WaterLevel)
}

/*****************************************************************************************************************/

// Shading is Simple's elevation ramp modulated by a directional light:
// intensity = ambient + (1-ambient)*max(0, dot(normal, light)).
type Shading struct {
	WaterLevel     float64
	AmbientLight   float64 // in [0,1]
	LightZenithDeg float64 // degrees from straight up, informational; LightDir is authoritative
	LightDir       Normal  // unit vector pointing toward the light source
}

/*****************************************************************************************************************/

func (s Shading) Shade(elevation float64, normal Normal) (r, g, b float64) {
	r, g, b = elevationRamp(elevation, s.WaterLevel)

	dot := normal.E*s.LightDir.E + normal.N*s.LightDir.N + normal.U*s.LightDir.U
	if dot < 0 {
		dot = 0
	}
	intensity := s.AmbientLight + (1-s.AmbientLight)*dot

	return r * intensity, g * intensity, b * intensity
}

/*****************************************************************************************************************/

// elevationRamp is the shared palette: flat blue at/below water level, then
// a green-to-brown-to-white ramp up to a fixed 4000m high-elevation cap.
func elevationRamp(elevation, waterLevel float64) (r, g, b float64) {
	if elevation <= waterLevel {
		return 0.16, 0.35, 0.64
	}

	const highCap = 4000.0 // meters; above this the ramp saturates to white
	t := clamp01((elevation - waterLevel) / highCap)

	switch {
	case t < 0.35:
		// lowland green
		u := t / 0.35
		return lerp(0.20, 0.55, u), lerp(0.45, 0.58, u), lerp(0.20, 0.30, u)
	case t < 0.75:
		// midland brown/grey
		u := (t - 0.35) / 0.40
		return lerp(0.55, 0.50, u), lerp(0.58, 0.45, u), lerp(0.30, 0.38, u)
	default:
		// highland fading to snow white
		u := (t - 0.75) / 0.25
		return lerp(0.50, 0.95, u), lerp(0.45, 0.95, u), lerp(0.38, 0.98, u)
	}
}

/*****************************************************************************************************************/

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

/*****************************************************************************************************************/

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

/*****************************************************************************************************************/

// normalSampleMeters is the finite-difference step used to estimate the
// terrain normal at a DEM cell, roughly one DTED post at the equator.
const normalSampleMeters = 30.0

/*****************************************************************************************************************/

// EstimateNormal samples the DEM cache at four points surrounding (lat,lon)
// to estimate the surface normal by central difference.
func EstimateNormal(cache *dem.Cache, lat, lon float64) Normal {
	dLat := (normalSampleMeters / 111320.0)
	dLon := dLat / math.Max(math.Cos(lat*math.Pi/180), 1e-6)

	hN := cache.Height(lat+dLat, lon)
	hS := cache.Height(lat-dLat, lon)
	hE := cache.Height(lat, lon+dLon)
	hW := cache.Height(lat, lon-dLon)

	dzdx := (hE - hW) / (2 * normalSampleMeters)
	dzdy := (hN - hS) / (2 * normalSampleMeters)

	n := Normal{E: -dzdx, N: -dzdy, U: 1}
	length := math.Sqrt(n.E*n.E + n.N*n.N + n.U*n.U)
	return Normal{E: n.E / length, N: n.N / length, U: n.U / length}
}
