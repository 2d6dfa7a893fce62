/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/terrain

/*****************************************************************************************************************/

package terrain

/*****************************************************************************************************************/

import (
	"testing"

	"github.com/terrainscope/terrainscope/pkg/dem"
	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/ray"
)

/*****************************************************************************************************************/

type flatLoader struct {
	height float64
}

/*****************************************************************************************************************/

func (f flatLoader) Load(lat, lon int) (*dem.Tile, error) {
	return &dem.Tile{
		LatFloor: lat, LonFloor: lon,
		OriginLat: float64(lat), OriginLon: float64(lon),
		SpacingLat: 1, SpacingLon: 1,
		Rows: 2, Cols: 2,
		Heights: []float64{f.height, f.height, f.height, f.height},
	}, nil
}

/*****************************************************************************************************************/

func TestNoHitWhenRayStaysAboveTerrain(t *testing.T) {
	c := dem.NewCache(flatLoader{height: 0}, 16, nil, nil)
	it := &Intersector{Cache: c}

	seg := ray.Segment{
		Start: ray.State{Phi: geodesy.Point{Lat: 0, Lon: 0, Alt: 100}},
		End:   ray.State{Phi: geodesy.Point{Lat: 0.001, Lon: 0, Alt: 90}},
	}

	result := it.Test(seg)
	if result.Hit != nil || result.BelowTerrain {
		t.Fatalf("expected no hit, got %+v", result)
	}
}

/*****************************************************************************************************************/

func TestBelowTerrainAbortsRay(t *testing.T) {
	c := dem.NewCache(flatLoader{height: 1000}, 16, nil, nil)
	it := &Intersector{Cache: c}

	seg := ray.Segment{
		Start: ray.State{Phi: geodesy.Point{Lat: 0, Lon: 0, Alt: 10}},
		End:   ray.State{Phi: geodesy.Point{Lat: 0.001, Lon: 0, Alt: 10}},
	}

	result := it.Test(seg)
	if !result.BelowTerrain {
		t.Fatalf("expected BelowTerrain, got %+v", result)
	}
}

/*****************************************************************************************************************/

func TestCrossingDetected(t *testing.T) {
	c := dem.NewCache(flatLoader{height: 100}, 16, nil, nil)
	it := &Intersector{Cache: c}

	seg := ray.Segment{
		Start: ray.State{Phi: geodesy.Point{Lat: 0, Lon: 0, Alt: 150}, D: 0},
		End:   ray.State{Phi: geodesy.Point{Lat: 0.001, Lon: 0, Alt: 50}, D: 200},
	}

	result := it.Test(seg)
	if result.Hit == nil {
		t.Fatal("expected a hit")
	}
	if result.Hit.H < 0 || result.Hit.H > 200 {
		t.Errorf("expected a plausible hit altitude, got %f", result.Hit.H)
	}
}
