/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/internal/dted

/*****************************************************************************************************************/

package dted

/*****************************************************************************************************************/

import "testing"

/*****************************************************************************************************************/

func TestSeaLevelLoaderReturnsNoTile(t *testing.T) {
	tile, err := SeaLevelLoader{}.Load(10, 20)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tile != nil {
		t.Error("expected a nil tile for the sea-level loader")
	}
}

/*****************************************************************************************************************/

func TestSyntheticLoaderBuildsGridMatchingHeightFn(t *testing.T) {
	loader := SyntheticLoader{HeightAt: PlateauAt(0.2, 0.8, 0.2, 0.8, 1000), PostsPerDegree: 11}

	tile, err := loader.Load(0, 0)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if tile.Rows != 11 || tile.Cols != 11 {
		t.Fatalf("expected an 11x11 grid, got %dx%d", tile.Rows, tile.Cols)
	}

	onPlateau := tile.HeightAt(0.5, 0.5)
	if onPlateau < 900 {
		t.Errorf("expected the plateau center to read near 1000, got %v", onPlateau)
	}

	offPlateau := tile.HeightAt(0.01, 0.01)
	if offPlateau > 100 {
		t.Errorf("expected outside the plateau to read near 0, got %v", offPlateau)
	}
}

/*****************************************************************************************************************/
