/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/internal/config

/*****************************************************************************************************************/

package config

/*****************************************************************************************************************/

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/terrainscope/terrainscope/pkg/scene"
	"github.com/terrainscope/terrainscope/pkg/shading"
)

/*****************************************************************************************************************/

const sampleYAML = `
scene:
  terrain_folder: ./terrain
  objects:
    - type: cylinder
      lat: 0.01
      lon: 0.02
      alt: 0
      radius: 5
      height: 50
      color: [255, 0, 0, 128]
view:
  position: {lat: 0, lon: 0, alt: 2}
  frame: {azimuth: 0, elevation: 0, fov: 60}
  coloring: {type: simple, water_level: 0}
  fog_distance: 50000
earth_shape:
  type: flat_distorted
  radius: 6371000
straight_rays: true
simulation_step: 10
max_distance: 200000
output:
  width: 640
  height: 480
  file: ./out.png
  file_metadata: ./out.meta
  show_eye_level: true
  generator: fast
atmosphere:
  default: true
`

/*****************************************************************************************************************/

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

/*****************************************************************************************************************/

func TestLoadDecodesHierarchicalConfig(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Output.Width != 640 || cfg.Output.Height != 480 {
		t.Errorf("expected 640x480 output, got %dx%d", cfg.Output.Width, cfg.Output.Height)
	}
	if len(cfg.Scene.Objects) != 1 || cfg.Scene.Objects[0].Type != "cylinder" {
		t.Fatalf("expected one cylinder object, got %+v", cfg.Scene.Objects)
	}
}

/*****************************************************************************************************************/

func TestLoadMissingFileIsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	if _, ok := err.(*Error); !ok {
		t.Errorf("expected a *config.Error, got %T", err)
	}
}

/*****************************************************************************************************************/

func TestValidateRejectsNonPositiveOutputDimensions(t *testing.T) {
	cfg := &Config{
		Output:         Output{Width: 0, Height: 480, File: "out.png"},
		SimulationStep: 10,
		MaxDistance:    1000,
		View:           View{Frame: FrameAngles{FOV: 60}},
		EarthShape:     EarthShapeConfig{Type: "flat_distorted"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation to reject a zero output width")
	}
}

/*****************************************************************************************************************/

func TestValidateRejectsUnknownEarthShape(t *testing.T) {
	cfg := &Config{
		Output:         Output{Width: 10, Height: 10, File: "out.png"},
		SimulationStep: 10,
		MaxDistance:    1000,
		View:           View{Frame: FrameAngles{FOV: 60}},
		EarthShape:     EarthShapeConfig{Type: "round"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation to reject an unrecognized earth_shape.type")
	}
}

/*****************************************************************************************************************/

func TestBuildEarthShapeDispatchesOnType(t *testing.T) {
	cfg := &Config{EarthShape: EarthShapeConfig{Type: "spherical", Radius: 6371000}}
	shape, err := cfg.BuildEarthShape()
	if err != nil {
		t.Fatalf("BuildEarthShape returned error: %v", err)
	}
	if shape.Radius() != 6371000 {
		t.Errorf("expected radius 6371000, got %v", shape.Radius())
	}
}

/*****************************************************************************************************************/

func TestBuildAtmosphereDefaultsToUSStandard(t *testing.T) {
	cfg := &Config{Atmosphere: AtmosphereConfig{Default: true}}
	profile, err := cfg.BuildAtmosphere()
	if err != nil {
		t.Fatalf("BuildAtmosphere returned error: %v", err)
	}
	_, pr, _ := profile.Sample(0)
	if pr < 101000 || pr > 101600 {
		t.Errorf("expected sea-level pressure near 101325 Pa, got %v", pr)
	}
}

/*****************************************************************************************************************/

func TestBuildColoringSelectsShadedType(t *testing.T) {
	cfg := &Config{View: View{Coloring: ColoringConfig{Type: "shaded", AmbientLight: 0.3}}}
	coloring := cfg.BuildColoring()
	r, g, b := coloring.Shade(1000, shading.Normal{U: 1})
	if r == 0 && g == 0 && b == 0 {
		t.Error("expected a non-black shaded color at elevation 1000")
	}
}

/*****************************************************************************************************************/

func TestBuildObjectsConvertsCylinder(t *testing.T) {
	cfg := &Config{Scene: Scene{Objects: []ObjectConfig{
		{Type: "cylinder", Lat: 0.01, Lon: 0.02, Radius: 5, Height: 50, Color: []int{255, 0, 0, 128}},
	}}}
	objects, err := cfg.BuildObjects(func(lat, lon float64) float64 { return 0 })
	if err != nil {
		t.Fatalf("BuildObjects returned error: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("expected one object, got %d", len(objects))
	}
}

/*****************************************************************************************************************/

func TestBuildObjectsResolvesRelativeAltitude(t *testing.T) {
	cfg := &Config{Scene: Scene{Objects: []ObjectConfig{
		{Type: "cylinder", Lat: 0.01, Lon: 0.02, Alt: 10, AltitudeMode: "relative", Radius: 5, Height: 50},
	}}}
	objects, err := cfg.BuildObjects(func(lat, lon float64) float64 { return 1000 })
	if err != nil {
		t.Fatalf("BuildObjects returned error: %v", err)
	}
	cyl, ok := objects[0].(scene.Cylinder)
	if !ok {
		t.Fatalf("expected a scene.Cylinder, got %T", objects[0])
	}
	if cyl.Center.Alt != 1010 {
		t.Errorf("expected relative alt 10 over terrain 1000 to resolve to 1010, got %v", cyl.Center.Alt)
	}
}

/*****************************************************************************************************************/
