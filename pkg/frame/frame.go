/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/frame

/*****************************************************************************************************************/

// Package frame maps output pixels to initial ray directions and tiles the
// work of tracing every pixel across worker goroutines.
package frame

/*****************************************************************************************************************/

import (
	"context"
	"image"
	"image/color"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/terrainscope/terrainscope/pkg/atmosphere"
	"github.com/terrainscope/terrainscope/pkg/dem"
	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/pipeline"
	"github.com/terrainscope/terrainscope/pkg/ray"
)

/*****************************************************************************************************************/

// Mode is the closed set of frame-generation strategies.
type Mode int

/*****************************************************************************************************************/

const (
	Fast Mode = iota
	Rectilinear
	InterpolatingRectilinear
)

/*****************************************************************************************************************/

// ViewConfig describes the observer's view: position, facing direction and
// field of view, and the output raster's dimensions.
type ViewConfig struct {
	Width, Height            int
	Position                 geodesy.Point // altitude already resolved to MSL
	AzimuthDeg, ElevationDeg float64       // view center direction
	FOVDeg                   float64       // horizontal field of view, degrees
	Mode                     Mode
	CoarseStep               int // pixels per InterpolatingRectilinear cell; default 8
}

/*****************************************************************************************************************/

// RenderConfig is everything one render needs: the view, the ray/optics
// model and the pixel pipeline's shared, immutable configuration.
type RenderConfig struct {
	View ViewConfig

	Shape        geodesy.EarthShape
	Atmosphere   *atmosphere.Profile
	StraightRays bool
	Step         float64
	MaxDistance  float64

	Pipeline pipeline.Config

	Workers     int // 0 = runtime.GOMAXPROCS(0)
	RowsPerTile int // 0 = 8
}

/*****************************************************************************************************************/

// Stats accumulates aggregate ray-level anomaly counts: these are not
// errors, just reported alongside the finished render.
type Stats struct {
	Escaped      atomic.Int64
	BelowTerrain atomic.Int64
	OpaqueHits   atomic.Int64
}

/*****************************************************************************************************************/

func (s *Stats) record(o pipeline.Outcome) {
	if o.Escaped {
		s.Escaped.Add(1)
	}
	if o.BelowTerrain {
		s.BelowTerrain.Add(1)
	}
	if o.OpaqueHit {
		s.OpaqueHits.Add(1)
	}
}

/*****************************************************************************************************************/

// Render traces every pixel of cfg.View, partitioned into row tiles and
// distributed across a worker pool, and returns the finished raster, its
// per-pixel metadata (row-major, width*height) and aggregate statistics.
// Cancellation is cooperative: ctx is checked between tiles, never mid-ray.
func Render(ctx context.Context, cfg RenderConfig) (*image.NRGBA, []pipeline.Metadata, *Stats, error) {
	w, h := cfg.View.Width, cfg.View.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	meta := make([]pipeline.Metadata, w*h)
	stats := &Stats{}

	var grid *interpGrid
	if cfg.View.Mode == InterpolatingRectilinear {
		grid = newInterpGrid(cfg.View)
	}

	rowsPerTile := cfg.RowsPerTile
	if rowsPerTile < 1 {
		rowsPerTile = 8
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	latFloor, lonFloor := dem.Floor(cfg.View.Position.Lat, cfg.View.Position.Lon)

	type tile struct{ rowStart, rowEnd int }
	tiles := make(chan tile)

	g, gctx := errgroup.WithContext(ctx)

	// Each worker is a persistent goroutine, not a task-per-tile closure: it
	// keeps its own pipeline.Config with its own *terrain.Intersector, whose
	// dem.TileHint is seeded once from the observer's cell and then reused
	// across every row tile the worker ever pulls, so its DEM lookups keep
	// bypassing Cache's lock as long as they stay within a resident tile.
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			workerCfg := cfg
			if cfg.Pipeline.Intersector != nil {
				local := *cfg.Pipeline.Intersector
				if cfg.Pipeline.DemCache != nil {
					cfg.Pipeline.DemCache.SeedHint(latFloor, lonFloor, &local.Hint)
				}
				workerCfg.Pipeline.Intersector = &local
			}

			for t := range tiles {
				if err := gctx.Err(); err != nil {
					return err
				}
				renderTile(workerCfg, grid, img, meta, stats, t.rowStart, t.rowEnd)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(tiles)
		for rowStart := 0; rowStart < h; rowStart += rowsPerTile {
			rowEnd := min(rowStart+rowsPerTile, h)
			select {
			case tiles <- tile{rowStart, rowEnd}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return img, meta, stats, err
	}
	return img, meta, stats, nil
}

/*****************************************************************************************************************/

func renderTile(cfg RenderConfig, grid *interpGrid, img *image.NRGBA, meta []pipeline.Metadata, stats *Stats, rowStart, rowEnd int) {
	w := cfg.View.Width

	for row := rowStart; row < rowEnd; row++ {
		for col := 0; col < w; col++ {
			az, el := direction(cfg.View, grid, col, row)

			opts := ray.Options{
				Shape:        cfg.Shape,
				Atmosphere:   cfg.Atmosphere,
				StraightRays: cfg.StraightRays,
				Step:         cfg.Step,
				MaxDistance:  cfg.MaxDistance,
				Azimuth:      az,
				Origin:       cfg.View.Position,
			}

			c, m, outcome := pipeline.TracePixel(cfg.Pipeline, opts, el)
			stats.record(outcome)

			idx := row*w + col
			meta[idx] = m
			img.SetNRGBA(col, row, color.NRGBA{
				R: toByte(c.R), G: toByte(c.G), B: toByte(c.B), A: 255,
			})
		}
	}
}

/*****************************************************************************************************************/

func direction(cfg ViewConfig, grid *interpGrid, col, row int) (azDeg, elDeg float64) {
	switch cfg.Mode {
	case Rectilinear:
		return rectilinearDirection(cfg, col, row)
	case InterpolatingRectilinear:
		return grid.direction(col, row)
	default:
		return fastDirection(cfg, col, row)
	}
}

/*****************************************************************************************************************/

func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

/*****************************************************************************************************************/
