/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/dem

/*****************************************************************************************************************/

package dem

/*****************************************************************************************************************/

import (
	"sync"
	"testing"
)

/*****************************************************************************************************************/

type fakeLoader struct {
	mu    sync.Mutex
	calls int
	tiles map[cellKey]*Tile
}

/*****************************************************************************************************************/

func (f *fakeLoader) Load(lat, lon int) (*Tile, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.tiles[cellKey{lat, lon}], nil
}

/*****************************************************************************************************************/

func flatTile(lat, lon int, height float64) *Tile {
	return &Tile{
		LatFloor: lat, LonFloor: lon,
		OriginLat: float64(lat), OriginLon: float64(lon),
		SpacingLat: 1, SpacingLon: 1,
		Rows: 2, Cols: 2,
		Heights: []float64{height, height, height, height},
	}
}

/*****************************************************************************************************************/

func TestCacheMissingTileIsSeaLevel(t *testing.T) {
	loader := &fakeLoader{tiles: map[cellKey]*Tile{}}
	c := NewCache(loader, 4, nil, nil)

	if got := c.Height(10.5, 20.5); got != 0 {
		t.Errorf("expected sea level for a missing tile, got %f", got)
	}
}

/*****************************************************************************************************************/

func TestCacheBilinearInterpolation(t *testing.T) {
	loader := &fakeLoader{tiles: map[cellKey]*Tile{
		{10, 20}: {
			LatFloor: 10, LonFloor: 20,
			OriginLat: 10, OriginLon: 20,
			SpacingLat: 1, SpacingLon: 1,
			Rows: 2, Cols: 2,
			Heights: []float64{0, 0, 100, 100}, // row 0 = OriginLat (south), row 1 = north
		},
	}}
	c := NewCache(loader, 4, nil, nil)

	got := c.Height(10.5, 20.5)
	if got != 50 {
		t.Errorf("expected 50 at the midpoint, got %f", got)
	}
}

/*****************************************************************************************************************/

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	loader := &fakeLoader{tiles: map[cellKey]*Tile{
		{0, 0}: flatTile(0, 0, 1),
		{1, 1}: flatTile(1, 1, 2),
		{2, 2}: flatTile(2, 2, 3),
	}}
	c := NewCache(loader, 2, nil, nil)

	c.Height(0.5, 0.5)
	c.Height(1.5, 1.5)
	c.Height(0.5, 0.5) // touch (0,0) so (1,1) becomes least-recently-used
	c.Height(2.5, 2.5) // evicts (1,1)

	if c.Len() != 2 {
		t.Errorf("expected 2 resident tiles, got %d", c.Len())
	}

	loader.mu.Lock()
	before := loader.calls
	loader.mu.Unlock()

	c.Height(0.5, 0.5) // should still be resident, no reload
	loader.mu.Lock()
	after := loader.calls
	loader.mu.Unlock()

	if after != before {
		t.Errorf("expected (0,0) to remain cached, reloaded instead")
	}
}

/*****************************************************************************************************************/

func TestCacheConcurrentReaders(t *testing.T) {
	loader := &fakeLoader{tiles: map[cellKey]*Tile{
		{0, 0}: flatTile(0, 0, 42),
	}}
	c := NewCache(loader, 4, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.Height(0.5, 0.5); got != 42 {
				t.Errorf("expected 42, got %f", got)
			}
		}()
	}
	wg.Wait()
}

/*****************************************************************************************************************/

func TestHeightHintedReusesResidentTileWithoutReload(t *testing.T) {
	loader := &fakeLoader{tiles: map[cellKey]*Tile{
		{10, 20}: flatTile(10, 20, 7),
		{11, 20}: flatTile(11, 20, 9),
	}}
	c := NewCache(loader, 4, nil, nil)

	var hint TileHint
	if got := c.HeightHinted(10.5, 20.5, &hint); got != 7 {
		t.Errorf("expected 7, got %f", got)
	}
	if !hint.set || hint.key != (cellKey{10, 20}) {
		t.Errorf("expected hint to be set to (10,20), got %+v", hint)
	}

	// A second lookup in the same cell must hit the hint, not reload.
	if got := c.HeightHinted(10.9, 20.9, &hint); got != 7 {
		t.Errorf("expected 7, got %f", got)
	}

	// A lookup in a different cell must refresh the hint.
	if got := c.HeightHinted(11.5, 20.5, &hint); got != 9 {
		t.Errorf("expected 9, got %f", got)
	}
	if hint.key != (cellKey{11, 20}) {
		t.Errorf("expected hint to refresh to (11,20), got %+v", hint.key)
	}
}

/*****************************************************************************************************************/

func TestSeedHintWarmsFromNearestResident(t *testing.T) {
	loader := &fakeLoader{tiles: map[cellKey]*Tile{
		{10, 10}: flatTile(10, 10, 5),
	}}
	c := NewCache(loader, 4, nil, nil)
	c.Height(10.5, 10.5)

	var hint TileHint
	c.SeedHint(11, 11, &hint)

	if !hint.set || hint.key != (cellKey{10, 10}) {
		t.Errorf("expected hint seeded from nearest resident (10,10), got %+v", hint)
	}
	if got := hint.tile.HeightAt(10.5, 10.5); got != 5 {
		t.Errorf("expected seeded hint tile to report 5, got %f", got)
	}
}

/*****************************************************************************************************************/

func TestNearestResident(t *testing.T) {
	loader := &fakeLoader{tiles: map[cellKey]*Tile{
		{10, 10}: flatTile(10, 10, 1),
	}}
	c := NewCache(loader, 4, nil, nil)
	c.Height(10.5, 10.5)

	lat, lon, ok := c.NearestResident(11, 11)
	if !ok || lat != 10 || lon != 10 {
		t.Errorf("expected nearest resident (10,10), got (%d,%d) ok=%v", lat, lon, ok)
	}
}
