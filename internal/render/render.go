/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/internal/render

/*****************************************************************************************************************/

// Package render wires a decoded internal/config.Config into the pkg/
// engine's frame.RenderConfig, runs the render, and stamps the run with a
// ULID for traceability in logs.
package render

/*****************************************************************************************************************/

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math/rand"
	"time"

	"github.com/oklog/ulid"

	"github.com/terrainscope/terrainscope/internal/config"
	"github.com/terrainscope/terrainscope/internal/dted"
	"github.com/terrainscope/terrainscope/pkg/dem"
	"github.com/terrainscope/terrainscope/pkg/frame"
	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/pipeline"
	"github.com/terrainscope/terrainscope/pkg/terrain"
)

/*****************************************************************************************************************/

// Cancelled wraps context.Canceled: a graceful abort, not a failure.
type Cancelled struct {
	RunID string
}

/*****************************************************************************************************************/

func (e *Cancelled) Error() string {
	return fmt.Sprintf("render: run %s was cancelled before completion", e.RunID)
}

/*****************************************************************************************************************/

func (e *Cancelled) Unwrap() error { return context.Canceled }

/*****************************************************************************************************************/

// Result is a finished render: the raster, per-pixel metadata and
// aggregate ray-level statistics.
type Result struct {
	RunID string
	Image *image.NRGBA
	Meta  []pipeline.Metadata
	Stats *frame.Stats
}

/*****************************************************************************************************************/

var defaultEntropySource = rand.New(rand.NewSource(1))

/*****************************************************************************************************************/

// newRunID mints a ULID for one render run, monotonic within a process
// using a fixed entropy source; the run identifier only needs to be
// unique per process lifetime, not cryptographically random.
func newRunID() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), defaultEntropySource)
	return id.String()
}

/*****************************************************************************************************************/

// Run builds the engine's RenderConfig from cfg and executes the render,
// logging DEM I/O degradation and the run's ULID via logger (nil discards
// logging).
func Run(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(discardWriter{}, "", 0)
	}

	runID := newRunID()
	logger.Printf("render: starting run %s", runID)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shape, err := cfg.BuildEarthShape()
	if err != nil {
		return nil, err
	}

	atm, err := cfg.BuildAtmosphere()
	if err != nil {
		return nil, err
	}

	var loader dem.Loader = dted.SeaLevelLoader{}
	if cfg.Scene.TerrainFolder != "" {
		// A real DTED parser is an external collaborator; this
		// repository only ships the sea-level default, so a configured
		// terrain folder without a wired parser still renders, degrading
		// every lookup to sea level with a one-line warning.
		logger.Printf("render: terrain_folder %q configured but no DTED parser is wired; degrading to sea level", cfg.Scene.TerrainFolder)
	}

	var index *dem.TileIndex
	if cfg.Scene.TileIndexPath != "" {
		index, err = dem.OpenTileIndex(cfg.Scene.TileIndexPath)
		if err != nil {
			return nil, &config.Error{Reason: fmt.Sprintf("failed to open tile index %q: %v", cfg.Scene.TileIndexPath, err)}
		}
		defer index.Close()
	}

	cache := dem.NewCache(loader, 64, index, logger)

	// Scene objects and the observer position may carry a terrain-relative
	// altitude; resolve both to absolute MSL
	// now, immediately after the DEM cache first becomes available.
	objects, err := cfg.BuildObjects(cache.Height)
	if err != nil {
		return nil, err
	}

	observer := geodesy.Point{Lat: cfg.View.Position.Lat, Lon: cfg.View.Position.Lon, Alt: cfg.View.Position.Alt}
	observer = observer.ResolveAltitude(cache.Height(observer.Lat, observer.Lon), cfg.View.Position.IsRelative())

	pipelineCfg := pipeline.Config{
		Intersector: &terrain.Intersector{Cache: cache},
		DemCache:    cache,
		Objects:     objects,
		Coloring:    cfg.BuildColoring(),
		FogDistance: cfg.View.FogDistance,
		FogColor:    toColor(config.Color3(cfg.View.FogColor, [3]float64{0.8, 0.85, 0.9})),
		SkyHorizon:  toColor(config.Color3(cfg.View.SkyHorizon, [3]float64{pipeline.DefaultSkyHorizon.R, pipeline.DefaultSkyHorizon.G, pipeline.DefaultSkyHorizon.B})),
		SkyZenith:   toColor(config.Color3(cfg.View.SkyZenith, [3]float64{pipeline.DefaultSkyZenith.R, pipeline.DefaultSkyZenith.G, pipeline.DefaultSkyZenith.B})),
	}

	renderCfg := frame.RenderConfig{
		View: frame.ViewConfig{
			Width:        cfg.Output.Width,
			Height:       cfg.Output.Height,
			Position:     observer,
			AzimuthDeg:   cfg.View.Frame.Azimuth,
			ElevationDeg: cfg.View.Frame.Elevation,
			FOVDeg:       cfg.View.Frame.FOV,
			Mode:         resolveMode(cfg.Output.Generator),
			CoarseStep:   cfg.Output.CoarseStep,
		},
		Shape:        shape,
		Atmosphere:   atm,
		StraightRays: cfg.StraightRays,
		Step:         cfg.SimulationStep,
		MaxDistance:  cfg.MaxDistance,
		Pipeline:     pipelineCfg,
	}

	img, meta, stats, err := frame.Render(ctx, renderCfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Printf("render: run %s cancelled", runID)
			return nil, &Cancelled{RunID: runID}
		}
		return nil, err
	}

	logger.Printf("render: run %s complete: %d escaped, %d below-terrain, %d opaque hits",
		runID, stats.Escaped.Load(), stats.BelowTerrain.Load(), stats.OpaqueHits.Load())

	return &Result{RunID: runID, Image: img, Meta: meta, Stats: stats}, nil
}

/*****************************************************************************************************************/

func resolveMode(generator string) frame.Mode {
	switch generator {
	case "rectilinear":
		return frame.Rectilinear
	case "interpolating_rectilinear":
		return frame.InterpolatingRectilinear
	default:
		return frame.Fast
	}
}

/*****************************************************************************************************************/

func toColor(c [3]float64) pipeline.Color {
	return pipeline.Color{R: c[0], G: c[1], B: c[2]}
}

/*****************************************************************************************************************/

type discardWriter struct{}

/*****************************************************************************************************************/

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

/*****************************************************************************************************************/
