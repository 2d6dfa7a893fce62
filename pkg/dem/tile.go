/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/dem

/*****************************************************************************************************************/

// Package dem serves bilinearly-interpolated terrain height at any
// (lat, lon), backed by an injected tile loader and a bounded LRU cache.
package dem

/*****************************************************************************************************************/

import "math"

/*****************************************************************************************************************/

// Tile is a regular lat/lon grid of post heights with a known origin,
// spacing and dimensions, covering one whole-degree cell.
type Tile struct {
	LatFloor, LonFloor int // whole-degree southwest origin of the cell this tile covers
	OriginLat          float64
	OriginLon          float64
	SpacingLat         float64
	SpacingLon         float64
	Rows, Cols         int       // Rows indexed north from OriginLat, Cols indexed east from OriginLon
	Heights            []float64 // row-major, length Rows*Cols
}

/*****************************************************************************************************************/

// HeightAt bilinearly interpolates the four neighboring posts surrounding
// (lat, lon). Coordinates outside the tile's grid are clamped to the
// nearest edge post.
func (t *Tile) HeightAt(lat, lon float64) float64 {
	fr := (lat - t.OriginLat) / t.SpacingLat
	fc := (lon - t.OriginLon) / t.SpacingLon

	fr = clamp(fr, 0, float64(t.Rows-1))
	fc = clamp(fc, 0, float64(t.Cols-1))

	r0 := int(math.Floor(fr))
	c0 := int(math.Floor(fc))
	r1 := min(r0+1, t.Rows-1)
	c1 := min(c0+1, t.Cols-1)

	tr := fr - float64(r0)
	tc := fc - float64(c0)

	h00 := t.post(r0, c0)
	h10 := t.post(r0, c1)
	h01 := t.post(r1, c0)
	h11 := t.post(r1, c1)

	top := h00 + (h10-h00)*tc
	bottom := h01 + (h11-h01)*tc
	return top + (bottom-top)*tr
}

/*****************************************************************************************************************/

func (t *Tile) post(row, col int) float64 {
	return t.Heights[row*t.Cols+col]
}

/*****************************************************************************************************************/

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

/*****************************************************************************************************************/

// Loader loads the tile covering the whole-degree cell (latFloor, lonFloor).
// It returns (nil, nil) when no tile exists on disk for that cell; such
// cells read as sea level. Implementations (e.g. a DTED parser) are
// external collaborators; only this interface lives in the core.
type Loader interface {
	Load(latFloor, lonFloor int) (*Tile, error)
}

/*****************************************************************************************************************/

// Floor returns the whole-degree southwest origin containing (lat, lon).
func Floor(lat, lon float64) (latFloor, lonFloor int) {
	return int(math.Floor(lat)), int(math.Floor(lon))
}
