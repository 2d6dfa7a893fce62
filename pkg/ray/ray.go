/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/ray

/*****************************************************************************************************************/

// Package ray integrates the refracted ray ODE step by step in the chosen
// Earth/optics model, invoking a visitor with each integration segment so
// callers (the terrain intersector and scene objects) can detect crossings
// without the propagator knowing anything about terrain or scenery.
package ray

/*****************************************************************************************************************/

import (
	"math"

	"github.com/terrainscope/terrainscope/pkg/atmosphere"
	"github.com/terrainscope/terrainscope/pkg/geodesy"
)

/*****************************************************************************************************************/

const (
	escapeAltitude  = 100000 // meters; ray is considered to have left the atmosphere
	derivativeHStep = 0.1    // meters, central-difference step for dn/dh
)

/*****************************************************************************************************************/

// State is the ray's position at one point along its path: horizontal arc
// distance S, altitude H, vertical slope DHDS, cumulative path length D,
// and the geographic position Phi reached by advancing Azimuth by S.
type State struct {
	S, H, DHDS, D float64
	Phi           geodesy.Point
}

/*****************************************************************************************************************/

// Segment is one RK4 step's start and end state, the unit the visitor
// receives.
type Segment struct {
	Start, End State
}

/*****************************************************************************************************************/

// HitDecision is returned by a Visitor after examining a Segment.
type HitDecision struct {
	// Stop terminates the trace immediately, e.g. an opaque hit with
	// alpha >= 1, or the observer starting below terrain.
	Stop bool
}

/*****************************************************************************************************************/

// Visitor is the propagator's sole capability for reporting segments; it
// is an interface, not a captured closure, so callers can compose several
// visitors (terrain + each scene object) behind one aggregator.
type Visitor interface {
	OnSegment(seg Segment) HitDecision
}

/*****************************************************************************************************************/

// VisitorFunc adapts a plain function to the Visitor interface.
type VisitorFunc func(seg Segment) HitDecision

/*****************************************************************************************************************/

func (f VisitorFunc) OnSegment(seg Segment) HitDecision { return f(seg) }

/*****************************************************************************************************************/

// Options configures one trace.
type Options struct {
	Shape        geodesy.EarthShape
	Atmosphere   *atmosphere.Profile
	StraightRays bool
	Step         float64 // simulation_step, meters of horizontal arc per RK4 step
	MaxDistance  float64
	Azimuth      float64 // degrees, held fixed for the whole trace
	Origin       geodesy.Point
}

/*****************************************************************************************************************/

// Trace integrates the ray from initial state forward, invoking visitor
// after every RK4 step, until cumulative arc length exceeds MaxDistance,
// the ray escapes above escapeAltitude, or the visitor signals Stop.
func Trace(initial State, opts Options, visitor Visitor) {
	state := initial
	for state.S < opts.MaxDistance {
		next := step(state, opts)

		decision := visitor.OnSegment(Segment{Start: state, End: next})
		state = next

		if decision.Stop {
			return
		}
		if state.H > escapeAltitude {
			return
		}
	}
}

/*****************************************************************************************************************/

type derivatives struct {
	dh, ddhds float64
}

/*****************************************************************************************************************/

func step(s State, opts Options) State {
	h, dhds := s.H, s.DHDS

	f := func(h, dhds float64) derivatives {
		if opts.StraightRays {
			return derivatives{dh: dhds, ddhds: 0}
		}
		return derivatives{dh: dhds, ddhds: curvatureTerm(opts.Shape, opts.Atmosphere, h, dhds)}
	}

	st := opts.Step

	k1 := f(h, dhds)
	k2 := f(h+st/2*k1.dh, dhds+st/2*k1.ddhds)
	k3 := f(h+st/2*k2.dh, dhds+st/2*k2.ddhds)
	k4 := f(h+st*k3.dh, dhds+st*k3.ddhds)

	newH := h + (st/6)*(k1.dh+2*k2.dh+2*k3.dh+k4.dh)
	newDHDS := dhds + (st/6)*(k1.ddhds+2*k2.ddhds+2*k3.ddhds+k4.ddhds)
	newS := s.S + st

	newD := s.D + math.Hypot(st, newH-h)
	newPhi := opts.Shape.Advance(opts.Origin, opts.Azimuth, newS)
	newPhi.Alt = newH

	return State{S: newS, H: newH, DHDS: newDHDS, D: newD, Phi: newPhi}
}

/*****************************************************************************************************************/

// curvatureTerm evaluates d(dh_ds)/ds from Fermat's principle on a
// spherically symmetric refracting medium. For flat models
// (R = +Inf) the 1/(h+R) curvature terms vanish and only the refraction
// contribution remains.
func curvatureTerm(shape geodesy.EarthShape, atm *atmosphere.Profile, h, dhds float64) float64 {
	dndh := dnDh(atm, h)
	_, _, n := atm.Sample(h)
	refraction := (1 / n) * dndh

	r := shape.Radius()
	if math.IsInf(r, 1) {
		return refraction * (1 + dhds*dhds)
	}

	slope := shape.SurfaceSlopeFactor(h)
	a := refraction * (1 + dhds*dhds/(slope*slope))
	b := 2 * dhds * dhds / (slope * (h + r))
	c := 1 / (h + r)
	return slope * (a - b - c)
}

/*****************************************************************************************************************/

// dnDh estimates dn/dh by central difference; n(h) is strictly monotonic
// within any isothermal layer so this is well-conditioned everywhere the
// profile is valid.
func dnDh(atm *atmosphere.Profile, h float64) float64 {
	_, _, nPlus := atm.Sample(h + derivativeHStep)
	_, _, nMinus := atm.Sample(h - derivativeHStep)
	return (nPlus - nMinus) / (2 * derivativeHStep)
}
