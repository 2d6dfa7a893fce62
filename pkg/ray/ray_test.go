/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/ray

/*****************************************************************************************************************/

package ray

/*****************************************************************************************************************/

import (
	"math"
	"testing"

	"github.com/terrainscope/terrainscope/pkg/atmosphere"
	"github.com/terrainscope/terrainscope/pkg/geodesy"
)

/*****************************************************************************************************************/

func floatEquals(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

/*****************************************************************************************************************/

// TestStraightRayMonotonicity: with straight rays and a flat Earth, h(s)
// is linear in s with slope equal to the initial dh_ds.
func TestStraightRayMonotonicity(t *testing.T) {
	opts := Options{
		Shape:        geodesy.FlatDistorted{R: 6371000},
		Atmosphere:   atmosphere.USStandard1976(),
		StraightRays: true,
		Step:         10,
		MaxDistance:  10000,
		Azimuth:      0,
		Origin:       geodesy.Point{Lat: 0, Lon: 0, Alt: 2},
	}
	initial := State{S: 0, H: 2, DHDS: -0.01, D: 0, Phi: opts.Origin}

	var lastState State
	Trace(initial, opts, VisitorFunc(func(seg Segment) HitDecision {
		lastState = seg.End
		return HitDecision{}
	}))

	expectedH := initial.H + initial.DHDS*lastState.S
	if !floatEquals(lastState.H, expectedH, 1e-6) {
		t.Errorf("expected h=%f at s=%f, got %f", expectedH, lastState.S, lastState.H)
	}

	recoveredSlope := (lastState.H - initial.H) / lastState.S
	if !floatEquals(recoveredSlope, initial.DHDS, 1e-9) {
		t.Errorf("expected recovered slope %f, got %f", initial.DHDS, recoveredSlope)
	}
}

/*****************************************************************************************************************/

func TestTraceStopsAtMaxDistance(t *testing.T) {
	opts := Options{
		Shape:        geodesy.Spherical{R: 6371000},
		Atmosphere:   atmosphere.USStandard1976(),
		StraightRays: true,
		Step:         100,
		MaxDistance:  1000,
		Azimuth:      0,
		Origin:       geodesy.Point{Lat: 0, Lon: 0, Alt: 2},
	}
	initial := State{S: 0, H: 2, DHDS: 0, D: 0, Phi: opts.Origin}

	segments := 0
	Trace(initial, opts, VisitorFunc(func(seg Segment) HitDecision {
		segments++
		return HitDecision{}
	}))

	if segments != 10 {
		t.Errorf("expected 10 segments of 100m each to cover 1000m, got %d", segments)
	}
}

/*****************************************************************************************************************/

func TestTraceStopsOnVisitorSignal(t *testing.T) {
	opts := Options{
		Shape:        geodesy.Spherical{R: 6371000},
		Atmosphere:   atmosphere.USStandard1976(),
		StraightRays: true,
		Step:         100,
		MaxDistance:  100000,
		Azimuth:      0,
		Origin:       geodesy.Point{Lat: 0, Lon: 0, Alt: 2},
	}
	initial := State{S: 0, H: 2, DHDS: 0, D: 0, Phi: opts.Origin}

	segments := 0
	Trace(initial, opts, VisitorFunc(func(seg Segment) HitDecision {
		segments++
		return HitDecision{Stop: segments >= 3}
	}))

	if segments != 3 {
		t.Errorf("expected the trace to stop after 3 segments, got %d", segments)
	}
}

/*****************************************************************************************************************/

func TestTraceEscapesAboveHundredKm(t *testing.T) {
	opts := Options{
		Shape:        geodesy.FlatDistorted{R: 6371000},
		Atmosphere:   atmosphere.USStandard1976(),
		StraightRays: true,
		Step:         1000,
		MaxDistance:  1e7,
		Azimuth:      0,
		Origin:       geodesy.Point{Lat: 0, Lon: 0, Alt: 0},
	}
	initial := State{S: 0, H: 0, DHDS: 1, D: 0, Phi: opts.Origin}

	var last State
	Trace(initial, opts, VisitorFunc(func(seg Segment) HitDecision {
		last = seg.End
		return HitDecision{}
	}))

	if last.S >= opts.MaxDistance {
		t.Errorf("expected the ray to escape well before max distance, stopped at s=%f", last.S)
	}
}
