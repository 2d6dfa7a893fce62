/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/scene

/*****************************************************************************************************************/

package scene

/*****************************************************************************************************************/

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/ray"
)

/*****************************************************************************************************************/

func TestCylinderTestSegmentHitsThroughCenter(t *testing.T) {
	center := geodesy.Point{Lat: 0, Lon: 0.01, Alt: 0}
	c := Cylinder{Center: center, Radius: 5, Height: 50, Color: color.RGBA{R: 255, A: 128}}

	observer := geodesy.Point{Lat: 0, Lon: 0, Alt: 25}
	seg := ray.Segment{
		Start: ray.State{D: 0, Phi: observer},
		End:   ray.State{D: 20000, Phi: geodesy.Point{Lat: 0, Lon: 0.02, Alt: 25}},
	}

	if !BoundingCylinderHit(c.Bounds(), seg) {
		t.Fatal("expected bounding pretest to admit a segment passing through the cylinder's footprint")
	}

	hit, ok := c.TestSegment(seg, observer)
	if !ok {
		t.Fatal("expected a cylinder hit")
	}
	if hit.A != 128.0/255 {
		t.Errorf("expected alpha %v, got %v", 128.0/255, hit.A)
	}
	if hit.D <= 0 || hit.D >= 20000 {
		t.Errorf("expected hit distance strictly between segment endpoints, got %v", hit.D)
	}
}

/*****************************************************************************************************************/

func TestCylinderTestSegmentMissesOutsideRadius(t *testing.T) {
	center := geodesy.Point{Lat: 0, Lon: 1, Alt: 0}
	c := Cylinder{Center: center, Radius: 5, Height: 50, Color: color.RGBA{A: 255}}

	observer := geodesy.Point{Lat: 0, Lon: 0, Alt: 25}
	seg := ray.Segment{
		Start: ray.State{D: 0, Phi: observer},
		End:   ray.State{D: 20000, Phi: geodesy.Point{Lat: 0, Lon: 0.02, Alt: 25}},
	}

	if BoundingCylinderHit(c.Bounds(), seg) {
		t.Fatal("expected the bounding pretest to reject a segment nowhere near the cylinder")
	}
}

/*****************************************************************************************************************/

func TestCylinderTestSegmentMissesAboveHeight(t *testing.T) {
	center := geodesy.Point{Lat: 0, Lon: 0.01, Alt: 0}
	c := Cylinder{Center: center, Radius: 5, Height: 10, Color: color.RGBA{A: 255}}

	observer := geodesy.Point{Lat: 0, Lon: 0, Alt: 100}
	seg := ray.Segment{
		Start: ray.State{D: 0, Phi: observer},
		End:   ray.State{D: 20000, Phi: geodesy.Point{Lat: 0, Lon: 0.02, Alt: 100}},
	}

	if _, ok := c.TestSegment(seg, observer); ok {
		t.Error("expected no hit: segment passes above the cylinder's height")
	}
}

/*****************************************************************************************************************/

func solidTexture(r, g, b, a uint8) *Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	c := color.NRGBA{R: r, G: g, B: b, A: a}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return NewTexture(img)
}

/*****************************************************************************************************************/

func TestBillboardTestSegmentHitsFacingObserver(t *testing.T) {
	center := geodesy.Point{Lat: 0, Lon: 0.01, Alt: 10}
	b := Billboard{Center: center, Width: 20, Height: 20, Texture: solidTexture(0, 255, 0, 255)}

	observer := geodesy.Point{Lat: 0, Lon: 0, Alt: 15}
	seg := ray.Segment{
		Start: ray.State{D: 0, Phi: observer},
		End:   ray.State{D: 20000, Phi: geodesy.Point{Lat: 0, Lon: 0.02, Alt: 15}},
	}

	hit, ok := b.TestSegment(seg, observer)
	if !ok {
		t.Fatal("expected a billboard hit")
	}
	if math.Abs(hit.G-1) > 1e-9 || hit.A != 1 {
		t.Errorf("expected opaque green texel, got rgba=(%v,%v,%v,%v)", hit.R, hit.G, hit.B, hit.A)
	}
}

/*****************************************************************************************************************/

func TestBillboardTestSegmentTransparentTexelNoHit(t *testing.T) {
	center := geodesy.Point{Lat: 0, Lon: 0.01, Alt: 10}
	b := Billboard{Center: center, Width: 20, Height: 20, Texture: solidTexture(0, 0, 0, 0)}

	observer := geodesy.Point{Lat: 0, Lon: 0, Alt: 15}
	seg := ray.Segment{
		Start: ray.State{D: 0, Phi: observer},
		End:   ray.State{D: 20000, Phi: geodesy.Point{Lat: 0, Lon: 0.02, Alt: 15}},
	}

	if _, ok := b.TestSegment(seg, observer); ok {
		t.Error("expected a fully transparent texel to produce no hit")
	}
}

/*****************************************************************************************************************/
