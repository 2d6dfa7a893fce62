/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/pipeline

/*****************************************************************************************************************/

// Package pipeline composes one pixel's terrain and scene-object hits
// front-to-back under alpha compositing: for every ray
// segment it collects whichever of the configured scene objects and the
// terrain intersector crossed it, orders those crossings by distance,
// blends each against a configurable fog color, and finally composites
// whatever transmittance survives against a sky gradient.
package pipeline

/*****************************************************************************************************************/

import (
	"math"
	"sort"

	"github.com/terrainscope/terrainscope/pkg/dem"
	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/ray"
	"github.com/terrainscope/terrainscope/pkg/scene"
	"github.com/terrainscope/terrainscope/pkg/shading"
	"github.com/terrainscope/terrainscope/pkg/terrain"
)

/*****************************************************************************************************************/

// Metadata is a pixel's first-opaque-hit record; fields are NaN when the pixel never hit anything opaque. Distance is the horizontal
// arc distance to the hit; PathLength is the ray's cumulative path length,
// which exceeds Distance by the vertical component and any refraction
// bending.
type Metadata struct {
	Lat, Lon, Elevation, Distance, PathLength float64
}

/*****************************************************************************************************************/

func nanMetadata() Metadata {
	nan := math.NaN()
	return Metadata{Lat: nan, Lon: nan, Elevation: nan, Distance: nan, PathLength: nan}
}

/*****************************************************************************************************************/

// Color is a premultiplied-free RGB triple in [0,1].
type Color struct{ R, G, B float64 }

/*****************************************************************************************************************/

// Outcome classifies how a ray trace ended, feeding the aggregate render
// statistics; ray-level anomalies are not errors.
type Outcome struct {
	Escaped      bool
	BelowTerrain bool
	OpaqueHit    bool
}

/*****************************************************************************************************************/

// Config is everything TracePixel needs to advance and shade one ray,
// shared read-only across every pixel in a render.
type Config struct {
	Intersector *terrain.Intersector
	DemCache    *dem.Cache
	Objects     []scene.Object
	Coloring    shading.Coloring

	FogDistance float64
	FogColor    Color

	SkyHorizon Color
	SkyZenith  Color
}

/*****************************************************************************************************************/

type compositeHit struct {
	s, d        float64
	lat, lon, h float64
	r, g, b, a  float64
}

/*****************************************************************************************************************/

// TracePixel integrates one ray (opts.Origin, opts.Azimuth, initial
// elevation elevationDeg) and returns its composited color, metadata and
// outcome classification.
func TracePixel(cfg Config, opts ray.Options, elevationDeg float64) (Color, Metadata, Outcome) {
	initial := ray.State{
		S:    0,
		H:    opts.Origin.Alt,
		DHDS: math.Tan(elevationDeg * geodesy.DegToRad),
		D:    0,
		Phi:  opts.Origin,
	}

	acc := Color{}
	tRem := 1.0
	meta := nanMetadata()
	metaSet := false
	var outcome Outcome
	var lastState ray.State = initial

	visitor := ray.VisitorFunc(func(seg ray.Segment) ray.HitDecision {
		lastState = seg.End

		var hits []compositeHit
		for _, obj := range cfg.Objects {
			if !scene.BoundingCylinderHit(obj.Bounds(), seg) {
				continue
			}
			if h, ok := obj.TestSegment(seg, opts.Origin); ok {
				hits = append(hits, compositeHit{s: h.S, d: h.D, lat: h.Lat, lon: h.Lon, h: h.H, r: h.R, g: h.G, b: h.B, a: h.A})
			}
		}

		terrainResult := cfg.Intersector.Test(seg)
		if terrainResult.BelowTerrain {
			outcome.BelowTerrain = true
			return ray.HitDecision{Stop: true}
		}

		terrainStopsRay := false
		if terrainResult.Hit != nil {
			normal := shading.EstimateNormal(cfg.DemCache, terrainResult.Hit.Lat, terrainResult.Hit.Lon)
			r, g, b := cfg.Coloring.Shade(terrainResult.Hit.H, normal)
			hits = append(hits, compositeHit{s: terrainResult.Hit.S, d: terrainResult.Hit.D, lat: terrainResult.Hit.Lat, lon: terrainResult.Hit.Lon, h: terrainResult.Hit.H, r: r, g: g, b: b, a: 1})
			terrainStopsRay = true
		}

		sort.Slice(hits, func(i, j int) bool { return hits[i].d < hits[j].d })

		for _, hit := range hits {
			fogWeight := 1 - math.Exp(-hit.d/cfg.FogDistance)
			r := lerp(hit.r, cfg.FogColor.R, fogWeight)
			g := lerp(hit.g, cfg.FogColor.G, fogWeight)
			b := lerp(hit.b, cfg.FogColor.B, fogWeight)

			acc.R += tRem * hit.a * r
			acc.G += tRem * hit.a * g
			acc.B += tRem * hit.a * b
			tRem *= 1 - hit.a

			if !metaSet && hit.a >= 0.5 {
				metaSet = true
				outcome.OpaqueHit = true
				meta = Metadata{Lat: hit.lat, Lon: hit.lon, Elevation: hit.h, Distance: hit.s, PathLength: hit.d}
			}
			if tRem < 1e-3 {
				return ray.HitDecision{Stop: true}
			}
		}

		if terrainStopsRay {
			return ray.HitDecision{Stop: true}
		}
		return ray.HitDecision{}
	})

	ray.Trace(initial, opts, visitor)

	if !outcome.BelowTerrain && !outcome.OpaqueHit && tRem > 1e-3 {
		outcome.Escaped = true
	}

	sky := skyGradientColor(cfg, lastState)
	acc.R += tRem * sky.R
	acc.G += tRem * sky.G
	acc.B += tRem * sky.B

	return acc, meta, outcome
}

/*****************************************************************************************************************/

// skyGradientColor derives a vertical gradient between the configured
// horizon fog color and zenith color from the ray's final vertical slope.
func skyGradientColor(cfg Config, last ray.State) Color {
	angle := math.Atan(last.DHDS)
	t := clamp01(0.5 + angle/(math.Pi/2))
	return Color{
		R: lerp(cfg.SkyHorizon.R, cfg.SkyZenith.R, t),
		G: lerp(cfg.SkyHorizon.G, cfg.SkyZenith.G, t),
		B: lerp(cfg.SkyHorizon.B, cfg.SkyZenith.B, t),
	}
}

/*****************************************************************************************************************/

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

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

// DefaultSkyHorizon and DefaultSkyZenith are the sky gradient endpoints
// used when none are configured.
var (
	DefaultSkyHorizon = Color{R: 0.78, G: 0.86, B: 0.93}
	DefaultSkyZenith  = Color{R: 0.25, G: 0.45, B: 0.85}
)
