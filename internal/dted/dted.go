/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/internal/dted

/*****************************************************************************************************************/

// Package dted supplies the default dem.Loader used when no terrain folder
// is configured, or as the contract a real DTED parser would implement.
// DTED parsing itself stays an external collaborator: this package never
// reads the binary DTED format.
package dted

/*****************************************************************************************************************/

import (
	"github.com/terrainscope/terrainscope/pkg/dem"
)

/*****************************************************************************************************************/

// SeaLevelLoader is a dem.Loader that reports no tile on disk for every
// cell, so every lookup degrades to sea level. It is the default when
// scene.terrain_folder is empty.
type SeaLevelLoader struct{}

/*****************************************************************************************************************/

func (SeaLevelLoader) Load(latFloor, lonFloor int) (*dem.Tile, error) { return nil, nil }

/*****************************************************************************************************************/

// SyntheticLoader serves a single analytic height function over every
// whole-degree cell, used by end-to-end tests and examples that need
// deterministic, non-flat terrain without a DTED file on disk.
type SyntheticLoader struct {
	// HeightAt returns the synthetic terrain height at (lat, lon).
	HeightAt func(lat, lon float64) float64

	// PostsPerDegree is the resolution of the generated grid; DTED Level 1
	// tiles are 1201x1201 posts per degree, DTED Level 0 121x121. Default
	// 121 when unset.
	PostsPerDegree int
}

/*****************************************************************************************************************/

func (s SyntheticLoader) Load(latFloor, lonFloor int) (*dem.Tile, error) {
	posts := s.PostsPerDegree
	if posts < 2 {
		posts = 121
	}

	spacing := 1.0 / float64(posts-1)
	heights := make([]float64, posts*posts)
	for row := 0; row < posts; row++ {
		lat := float64(latFloor) + float64(row)*spacing
		for col := 0; col < posts; col++ {
			lon := float64(lonFloor) + float64(col)*spacing
			heights[row*posts+col] = s.HeightAt(lat, lon)
		}
	}

	return &dem.Tile{
		LatFloor: latFloor, LonFloor: lonFloor,
		OriginLat: float64(latFloor), OriginLon: float64(lonFloor),
		SpacingLat: spacing, SpacingLon: spacing,
		Rows: posts, Cols: posts,
		Heights: heights,
	}, nil
}

/*****************************************************************************************************************/

// PlateauAt builds a HeightAt function for a single rectangular plateau of
// the given height, spanning [latMin,latMax]x[lonMin,lonMax], zero
// elsewhere.
func PlateauAt(latMin, latMax, lonMin, lonMax, height float64) func(lat, lon float64) float64 {
	return func(lat, lon float64) float64 {
		if lat >= latMin && lat <= latMax && lon >= lonMin && lon <= lonMax {
			return height
		}
		return 0
	}
}
