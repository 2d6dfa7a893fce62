/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/atmosphere

/*****************************************************************************************************************/

package atmosphere

/*****************************************************************************************************************/

import (
	"math"
	"testing"
)

/*****************************************************************************************************************/

func floatEquals(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

/*****************************************************************************************************************/

func TestUSStandard1976FixedPoint(t *testing.T) {
	p := USStandard1976()
	_, pr, _ := p.Sample(0)
	if !floatEquals(pr, 101325, 1e-6) {
		t.Errorf("expected pressure to equal the fixed point exactly, got %f", pr)
	}
}

/*****************************************************************************************************************/

func TestRefractiveIndexAtLeastOne(t *testing.T) {
	p := USStandard1976()
	for h := 0.0; h <= 50000; h += 500 {
		_, _, n := p.Sample(h)
		if n < 1 {
			t.Errorf("n(%f) = %f, want >= 1", h, n)
		}
	}
}

/*****************************************************************************************************************/

func TestSplinePassesThroughControlPoints(t *testing.T) {
	spl := &Spline{
		Points: []Point{
			{H: 0, T: 288.15},
			{H: 5000, T: 255},
			{H: 11000, T: 216.65},
		},
		Boundary: Natural,
	}
	p := &Profile{
		Breakpoints: []Breakpoint{
			{Altitude: -1000, Fn: spl},
			{Altitude: 11000, Fn: Linear{H0: 11000, T0: 216.65, Gradient: 0}},
		},
		FixedH: 0,
		FixedP: 101325,
	}
	if err := Build(p); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	for _, pt := range spl.Points {
		got := spl.temperature(pt.H)
		if !floatEquals(got, pt.T, 1e-6) {
			t.Errorf("spline at h=%f: got %f, want %f", pt.H, got, pt.T)
		}
	}
}

/*****************************************************************************************************************/

func TestMissingFixedPointErrors(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
	}{
		{
			name: "linear only",
			profile: &Profile{
				Breakpoints: []Breakpoint{
					{Altitude: -1000, Fn: Linear{H0: 0, T0: 200, Gradient: -0.0065}},
				},
			},
		},
		{
			name: "spline only",
			profile: &Profile{
				Breakpoints: []Breakpoint{
					{Altitude: -1000, Fn: &Spline{
						Points: []Point{
							{H: 0, T: 288.15},
							{H: 5000, T: 255},
							{H: 11000, T: 216.65},
						},
						Boundary: Natural,
					}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Build(tt.profile); err == nil {
				t.Fatal("expected an error for a profile with no pressure fixed point")
			}
		})
	}
}

/*****************************************************************************************************************/

func TestNonMonotoneBreakpointsRejected(t *testing.T) {
	p := &Profile{
		Breakpoints: []Breakpoint{
			{Altitude: 1000, Fn: Linear{H0: 1000, T0: 280, Gradient: 0}},
			{Altitude: 500, Fn: Linear{H0: 500, T0: 280, Gradient: 0}},
		},
		FixedH: 1000,
		FixedP: 90000,
	}
	if err := Build(p); err == nil {
		t.Fatal("expected an error for non-monotone breakpoints")
	}
}

/*****************************************************************************************************************/

func TestHydrostaticConsistencyIndependentOfStep(t *testing.T) {
	p := USStandard1976()
	_, pFixed, _ := p.Sample(p.FixedH)
	if !floatEquals(pFixed, p.FixedP, 1e-9) {
		t.Errorf("expected exact pressure recovery at the fixed point, got %f want %f", pFixed, p.FixedP)
	}
}
