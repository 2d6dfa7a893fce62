/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/atmosphere

/*****************************************************************************************************************/

// Package atmosphere composes piecewise temperature functions (linear
// segments and natural cubic splines) with hydrostatic pressure integration
// to yield temperature, pressure and refractive index at any altitude.
package atmosphere

/*****************************************************************************************************************/

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

/*****************************************************************************************************************/

// ProfileError is returned for malformed profiles, fatal at startup per the
// error-handling design.
type ProfileError struct {
	Reason string
}

/*****************************************************************************************************************/

func (e *ProfileError) Error() string {
	return fmt.Sprintf("atmosphere: %s", e.Reason)
}

/*****************************************************************************************************************/

// errMissingFixedPoint is the ProfileError reason used when no pressure
// fixed point anchors the hydrostatic integration. The anchor is required
// for every profile, spline-pinned temperature or not: integrating outward
// from a zero pressure would silently yield P=0 at every altitude.
const errMissingFixedPoint = "profile has no (altitude, pressure) fixed point"

/*****************************************************************************************************************/

// Boundary selects the cubic spline's endpoint condition.
type Boundary int

/*****************************************************************************************************************/

const (
	Natural Boundary = iota
	Derivatives
	SecondDerivatives
)

/*****************************************************************************************************************/

// TemperatureFunction is a closed set of per-interval temperature models.
type TemperatureFunction interface {
	// temperature returns T(h) for h within the interval this function
	// governs. Implementations do not range-check h.
	temperature(h float64) float64
}

/*****************************************************************************************************************/

// Linear is T(h) = T(h0) + gradient*(h-h0).
type Linear struct {
	H0, T0   float64
	Gradient float64
}

/*****************************************************************************************************************/

func (l Linear) temperature(h float64) float64 {
	return l.T0 + l.Gradient*(h-l.H0)
}

/*****************************************************************************************************************/

// Spline is a natural (or clamped) cubic spline over (h, T) control points.
type Spline struct {
	Points   []Point
	Boundary Boundary
	D0, D1   float64 // first or second derivative at the two ends, depending on Boundary

	coeffs []cubicSegment
}

/*****************************************************************************************************************/

// Point is an (altitude, temperature) control point.
type Point struct {
	H, T float64
}

/*****************************************************************************************************************/

type cubicSegment struct {
	h0, h1     float64
	a, b, c, d float64 // T(h) = a + b*dh + c*dh^2 + d*dh^3, dh = h-h0
}

/*****************************************************************************************************************/

// build solves for the spline's second derivatives and precomputes the
// per-segment cubic coefficients. Must be called once before temperature.
func (s *Spline) build() error {
	n := len(s.Points)
	if n < 2 {
		return &ProfileError{Reason: "spline requires at least 2 control points"}
	}

	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = s.Points[i+1].H - s.Points[i].H
		if h[i] <= 0 {
			return &ProfileError{Reason: "spline control points must be strictly increasing in altitude"}
		}
	}

	// Assemble the tridiagonal system for the second derivatives m_i, solved
	// as a dense linear system via gonum/mat (the gonum interp package does
	// not expose all three supported boundary conditions at once).
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)

	switch s.Boundary {
	case Derivatives:
		a.Set(0, 0, 2*h[0])
		a.Set(0, 1, h[0])
		b.SetVec(0, 6*((s.Points[1].T-s.Points[0].T)/h[0]-s.D0))

		a.Set(n-1, n-2, h[n-2])
		a.Set(n-1, n-1, 2*h[n-2])
		b.SetVec(n-1, 6*(s.D1-(s.Points[n-1].T-s.Points[n-2].T)/h[n-2]))
	case SecondDerivatives:
		a.Set(0, 0, 1)
		b.SetVec(0, s.D0)
		a.Set(n-1, n-1, 1)
		b.SetVec(n-1, s.D1)
	default: // Natural
		a.Set(0, 0, 1)
		b.SetVec(0, 0)
		a.Set(n-1, n-1, 1)
		b.SetVec(n-1, 0)
	}

	for i := 1; i < n-1; i++ {
		a.Set(i, i-1, h[i-1])
		a.Set(i, i, 2*(h[i-1]+h[i]))
		a.Set(i, i+1, h[i])
		rhs := 6 * ((s.Points[i+1].T-s.Points[i].T)/h[i] - (s.Points[i].T-s.Points[i-1].T)/h[i-1])
		b.SetVec(i, rhs)
	}

	var m mat.VecDense
	if err := m.SolveVec(a, b); err != nil {
		return &ProfileError{Reason: "spline system is singular: " + err.Error()}
	}

	s.coeffs = make([]cubicSegment, n-1)
	for i := 0; i < n-1; i++ {
		mi, mi1 := m.AtVec(i), m.AtVec(i+1)
		ti, ti1 := s.Points[i].T, s.Points[i+1].T
		hi := h[i]

		s.coeffs[i] = cubicSegment{
			h0: s.Points[i].H,
			h1: s.Points[i+1].H,
			a:  ti,
			b:  (ti1-ti)/hi - hi*(2*mi+mi1)/6,
			c:  mi / 2,
			d:  (mi1 - mi) / (6 * hi),
		}
	}
	return nil
}

/*****************************************************************************************************************/

func (s *Spline) temperature(h float64) float64 {
	idx := sort.Search(len(s.coeffs), func(i int) bool { return s.coeffs[i].h1 > h })
	if idx >= len(s.coeffs) {
		idx = len(s.coeffs) - 1
	}
	seg := s.coeffs[idx]
	dh := h - seg.h0
	return seg.a + dh*(seg.b+dh*(seg.c+dh*seg.d))
}

/*****************************************************************************************************************/

// Breakpoint binds a TemperatureFunction to the altitude at which it
// becomes active. Breakpoints are right-open; the last is right-unbounded.
type Breakpoint struct {
	Altitude float64
	Fn       TemperatureFunction
}

/*****************************************************************************************************************/

const (
	gravityConstant     = 9.80665  // m/s^2
	specificGasConstant = 287.058  // J/(kg*K), dry air
	gladstoneK0Pressure = 101325.0 // Pa, standard sea-level pressure for k
	gladstoneK0Temp     = 288.15   // K, standard sea-level temperature for k
)

/*****************************************************************************************************************/

// Profile is an ordered piecewise temperature model plus a pinned pressure
// fixed point, from which a pressure lookup table is integrated once.
type Profile struct {
	Breakpoints []Breakpoint
	FixedH      float64 // altitude of the pressure fixed point
	FixedP      float64 // pressure at FixedH, Pa

	k          float64
	tableH     []float64
	tableP     []float64
	integrated bool
}

/*****************************************************************************************************************/

// Build validates the profile and precomputes the pressure lookup table.
// Must be called once before Sample.
func Build(p *Profile) error {
	if len(p.Breakpoints) == 0 {
		return &ProfileError{Reason: "profile requires at least one breakpoint"}
	}
	for i := 1; i < len(p.Breakpoints); i++ {
		if p.Breakpoints[i].Altitude <= p.Breakpoints[i-1].Altitude {
			return &ProfileError{Reason: "breakpoints must be strictly increasing"}
		}
	}

	for _, bp := range p.Breakpoints {
		if spl, ok := bp.Fn.(*Spline); ok {
			if err := spl.build(); err != nil {
				return err
			}
		}
	}
	if p.FixedP == 0 {
		return &ProfileError{Reason: errMissingFixedPoint}
	}

	p.k = 0.000293 * gladstoneK0Temp / gladstoneK0Pressure

	if err := p.sampleAndValidateTemperatures(); err != nil {
		return err
	}

	p.integratePressureTable()
	p.integrated = true
	return nil
}

/*****************************************************************************************************************/

func (p *Profile) sampleAndValidateTemperatures() error {
	lo := p.Breakpoints[0].Altitude - 1000
	hi := p.Breakpoints[len(p.Breakpoints)-1].Altitude + 50000
	const samples = 256
	for i := 0; i <= samples; i++ {
		h := lo + (hi-lo)*float64(i)/samples
		if p.temperatureAt(h) <= 0 {
			return &ProfileError{Reason: fmt.Sprintf("temperature non-positive at altitude %.1f", h)}
		}
	}
	return nil
}

/*****************************************************************************************************************/

func (p *Profile) intervalIndex(h float64) int {
	idx := sort.Search(len(p.Breakpoints), func(i int) bool { return p.Breakpoints[i].Altitude > h }) - 1
	if idx < 0 {
		idx = 0
	}
	return idx
}

/*****************************************************************************************************************/

func (p *Profile) temperatureAt(h float64) float64 {
	return p.Breakpoints[p.intervalIndex(h)].Fn.temperature(h)
}

/*****************************************************************************************************************/

// integratePressureTable builds P(h_k) at each breakpoint by integrating
// the hydrostatic equation outward from the fixed point, one interval at a
// time with that interval's own temperature function (see
// pressureFromFixed: closed form for sloped linear pieces, 4th-order
// Runge-Kutta with 1m substeps otherwise).
func (p *Profile) integratePressureTable() {
	p.tableH = make([]float64, len(p.Breakpoints))
	p.tableP = make([]float64, len(p.Breakpoints))
	for i, bp := range p.Breakpoints {
		p.tableH[i] = bp.Altitude
	}

	// Find which breakpoint interval contains the fixed point and seed it.
	fixedIdx := p.intervalIndex(p.FixedH)

	p.tableP[fixedIdx] = p.pressureFromFixed(p.Breakpoints[fixedIdx].Altitude, p.FixedH, p.FixedP, p.Breakpoints[fixedIdx].Fn)

	for i := fixedIdx + 1; i < len(p.Breakpoints); i++ {
		p.tableP[i] = p.pressureFromFixed(p.Breakpoints[i].Altitude, p.tableH[i-1], p.tableP[i-1], p.Breakpoints[i-1].Fn)
	}
	for i := fixedIdx - 1; i >= 0; i-- {
		p.tableP[i] = p.pressureFromFixed(p.Breakpoints[i].Altitude, p.tableH[i+1], p.tableP[i+1], p.Breakpoints[i].Fn)
	}
}

/*****************************************************************************************************************/

// pressureFromFixed integrates dP/dh = -P*g/(R*T(h)) from (h0,P0) to target,
// using the closed form when fn is linear with |gradient|>1e-9, else RK4
// with 1m substeps (which also covers the isothermal case).
func (p *Profile) pressureFromFixed(target, h0, p0 float64, fn TemperatureFunction) float64 {
	if lin, ok := fn.(Linear); ok && math.Abs(lin.Gradient) > 1e-9 {
		t0 := lin.temperature(h0)
		tTarget := lin.temperature(target)
		exponent := -gravityConstant / (specificGasConstant * lin.Gradient)
		return p0 * math.Pow(tTarget/t0, exponent)
	}

	dhdP := func(h, pr float64) float64 {
		t := p.temperatureOf(fn, h)
		return -pr * gravityConstant / (specificGasConstant * t)
	}

	h, pr := h0, p0
	step := 1.0
	if target < h0 {
		step = -1.0
	}
	remaining := math.Abs(target - h0)
	for remaining > 0 {
		s := step
		if math.Abs(s) > remaining {
			s = step / math.Abs(step) * remaining
		}
		pr = rk4Step(h, pr, s, dhdP)
		h += s
		remaining -= math.Abs(s)
	}
	return pr
}

/*****************************************************************************************************************/

func (p *Profile) temperatureOf(fn TemperatureFunction, h float64) float64 {
	return fn.temperature(h)
}

/*****************************************************************************************************************/

func rk4Step(h, y, step float64, f func(h, y float64) float64) float64 {
	k1 := f(h, y)
	k2 := f(h+step/2, y+step/2*k1)
	k3 := f(h+step/2, y+step/2*k2)
	k4 := f(h+step, y+step*k3)
	return y + (step/6)*(k1+2*k2+2*k3+k4)
}

/*****************************************************************************************************************/

// interpolatePressure extends the closed-form pressure relation from the
// nearest breakpoint below h to h itself.
func (p *Profile) interpolatePressure(h float64) float64 {
	idx := p.intervalIndex(h)
	return p.pressureFromFixed(h, p.tableH[idx], p.tableP[idx], p.Breakpoints[idx].Fn)
}

/*****************************************************************************************************************/

// Sample returns temperature (K), pressure (Pa) and refractive index at h.
func (p *Profile) Sample(h float64) (t, pr, n float64) {
	t = p.temperatureAt(h)
	pr = p.interpolatePressure(h)
	n = 1 + p.k*pr/t
	return t, pr, n
}

/*****************************************************************************************************************/

// USStandard1976 returns the default troposphere profile used when no
// atmosphere is configured: T0=288.15K, P0=101325Pa, lapse -0.0065K/m to
// 11km, then isothermal.
func USStandard1976() *Profile {
	p := &Profile{
		Breakpoints: []Breakpoint{
			{Altitude: -1000, Fn: Linear{H0: 0, T0: 288.15, Gradient: -0.0065}},
			{Altitude: 11000, Fn: Linear{H0: 11000, T0: 288.15 - 0.0065*11000, Gradient: 0}},
		},
		FixedH: 0,
		FixedP: 101325,
	}
	if err := Build(p); err != nil {
		// The default profile is constructed from constants known to be
		// valid; a failure here indicates a programming error.
		panic(err)
	}
	return p
}
