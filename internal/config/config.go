/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/internal/config

/*****************************************************************************************************************/

// Package config decodes the hierarchical render configuration from YAML
// and builds the typed values the pkg/ engine needs,
// so the CLI layer in cmd/ never constructs pkg types from raw strings
// itself.
package config

/*****************************************************************************************************************/

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/terrainscope/terrainscope/pkg/atmosphere"
	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/shading"
)

/*****************************************************************************************************************/

// Error wraps a rejected configuration, fatal at startup.
type Error struct {
	Reason string
}

/*****************************************************************************************************************/

func (e *Error) Error() string { return fmt.Sprintf("config: %s", e.Reason) }

/*****************************************************************************************************************/

// Config is the hierarchical render configuration. All altitudes are
// meters, all angles degrees.
type Config struct {
	Scene          Scene            `yaml:"scene"`
	View           View             `yaml:"view"`
	EarthShape     EarthShapeConfig `yaml:"earth_shape"`
	StraightRays   bool             `yaml:"straight_rays"`
	SimulationStep float64          `yaml:"simulation_step"`
	MaxDistance    float64          `yaml:"max_distance"`
	Output         Output           `yaml:"output"`
	Atmosphere     AtmosphereConfig `yaml:"atmosphere"`
}

/*****************************************************************************************************************/

// Scene is scene{terrain_folder, objects[]}.
type Scene struct {
	TerrainFolder string         `yaml:"terrain_folder"`
	TileIndexPath string         `yaml:"tile_index_path,omitempty"`
	Objects       []ObjectConfig `yaml:"objects"`
}

/*****************************************************************************************************************/

// ObjectConfig is one scene object, tagged by Type ("cylinder" or
// "billboard"); only the fields relevant to the tag are read. AltitudeMode
// works the same as PositionConfig.AltitudeMode: a "relative" Alt is the object's base height above terrain at (Lat, Lon).
type ObjectConfig struct {
	Type         string  `yaml:"type"`
	Lat          float64 `yaml:"lat"`
	Lon          float64 `yaml:"lon"`
	Alt          float64 `yaml:"alt"`
	AltitudeMode string  `yaml:"altitude_mode,omitempty"`
	Radius       float64 `yaml:"radius,omitempty"`
	Width        float64 `yaml:"width,omitempty"`
	Height       float64 `yaml:"height,omitempty"`

	// Color is [r,g,b,a], each 0-255, used by cylinder objects.
	Color []int `yaml:"color,omitempty"`

	// TextureFile is a billboard's source image path, decoded via the
	// standard image package's registered decoders.
	TextureFile string `yaml:"texture_file,omitempty"`
}

/*****************************************************************************************************************/

// IsRelative reports whether Alt is terrain-relative rather than absolute
// MSL.
func (oc ObjectConfig) IsRelative() bool { return oc.AltitudeMode == "relative" }

/*****************************************************************************************************************/

// View is view{position, frame, coloring, fog_distance}.
type View struct {
	Position    PositionConfig `yaml:"position"`
	Frame       FrameAngles    `yaml:"frame"`
	Coloring    ColoringConfig `yaml:"coloring"`
	FogDistance float64        `yaml:"fog_distance"`
	FogColor    []float64      `yaml:"fog_color,omitempty"`
	SkyHorizon  []float64      `yaml:"sky_horizon,omitempty"`
	SkyZenith   []float64      `yaml:"sky_zenith,omitempty"`
}

/*****************************************************************************************************************/

// PositionConfig is the observer's geographic position. AltitudeMode is
// either "absolute" (the default) or "relative": a relative Alt is height
// above terrain at (Lat, Lon), resolved to absolute MSL immediately after
// the DEM lookup that first becomes possible.
type PositionConfig struct {
	Lat          float64 `yaml:"lat"`
	Lon          float64 `yaml:"lon"`
	Alt          float64 `yaml:"alt"`
	AltitudeMode string  `yaml:"altitude_mode,omitempty"`
}

/*****************************************************************************************************************/

// IsRelative reports whether Alt is terrain-relative rather than absolute
// MSL.
func (p PositionConfig) IsRelative() bool { return p.AltitudeMode == "relative" }

/*****************************************************************************************************************/

// FrameAngles is the view direction and horizontal field of view, degrees.
type FrameAngles struct {
	Azimuth   float64 `yaml:"azimuth"`
	Elevation float64 `yaml:"elevation"`
	FOV       float64 `yaml:"fov"`
}

/*****************************************************************************************************************/

// ColoringConfig selects a pkg/shading.Coloring, tagged by Type ("simple"
// or "shaded").
type ColoringConfig struct {
	Type           string  `yaml:"type"`
	WaterLevel     float64 `yaml:"water_level"`
	AmbientLight   float64 `yaml:"ambient_light"`
	LightAzimuth   float64 `yaml:"light_azimuth"`
	LightElevation float64 `yaml:"light_elevation"`
}

/*****************************************************************************************************************/

// EarthShapeConfig selects a geodesy.EarthShape, tagged by Type
// ("spherical", "azimuthal_equidistant", "flat_spherical" or
// "flat_distorted").
type EarthShapeConfig struct {
	Type   string  `yaml:"type"`
	Radius float64 `yaml:"radius"`
}

/*****************************************************************************************************************/

// Output is output{width, height, file, file_metadata, ticks[],
// show_eye_level, generator}.
type Output struct {
	Width        int          `yaml:"width"`
	Height       int          `yaml:"height"`
	File         string       `yaml:"file"`
	FileMetadata string       `yaml:"file_metadata"`
	Ticks        []TickConfig `yaml:"ticks"`
	ShowEyeLevel bool         `yaml:"show_eye_level"`
	Generator    string       `yaml:"generator"` // fast | rectilinear | interpolating_rectilinear
	CoarseStep   int          `yaml:"coarse_step"`
}

/*****************************************************************************************************************/

// TickConfig is one visual azimuth marker.
type TickConfig struct {
	Azimuth float64 `yaml:"azimuth"`
	Size    float64 `yaml:"size"`
	Label   string  `yaml:"label"`
}

/*****************************************************************************************************************/

// AtmosphereConfig selects either the US Standard 1976 default or a custom
// piecewise profile.
type AtmosphereConfig struct {
	Default       bool               `yaml:"default"`
	Breakpoints   []BreakpointConfig `yaml:"breakpoints"`
	FixedAltitude float64            `yaml:"fixed_altitude"`
	FixedPressure float64            `yaml:"fixed_pressure"`
}

/*****************************************************************************************************************/

// BreakpointConfig binds one temperature function to the altitude at which
// it starts, tagged by Kind ("linear" or "spline").
type BreakpointConfig struct {
	Altitude float64       `yaml:"altitude"`
	Kind     string        `yaml:"kind"`
	Gradient float64       `yaml:"gradient,omitempty"`
	BaseTemp float64       `yaml:"base_temp,omitempty"`
	Points   []PointConfig `yaml:"points,omitempty"`
	Boundary string        `yaml:"boundary,omitempty"`
	D0       float64       `yaml:"d0,omitempty"`
	D1       float64       `yaml:"d1,omitempty"`
}

/*****************************************************************************************************************/

// PointConfig is one (altitude, temperature) spline control point.
type PointConfig struct {
	H float64 `yaml:"h"`
	T float64 `yaml:"t"`
}

/*****************************************************************************************************************/

// Load decodes a Config from the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("failed to read config file %q: %v", path, err)}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("failed to parse config file %q: %v", path, err)}
	}
	return &cfg, nil
}

/*****************************************************************************************************************/

// Validate rejects configurations that cannot possibly render.
func (c *Config) Validate() error {
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return &Error{Reason: "output.width and output.height must be positive"}
	}
	if c.Output.File == "" {
		return &Error{Reason: "output.file must be set"}
	}
	if c.SimulationStep <= 0 {
		return &Error{Reason: "simulation_step must be positive"}
	}
	if c.MaxDistance <= 0 {
		return &Error{Reason: "max_distance must be positive"}
	}
	if c.View.Frame.FOV <= 0 || c.View.Frame.FOV >= 180 {
		return &Error{Reason: "view.frame.fov must be in (0, 180)"}
	}
	switch c.EarthShape.Type {
	case "spherical", "azimuthal_equidistant", "flat_spherical", "flat_distorted":
	default:
		return &Error{Reason: fmt.Sprintf("earth_shape.type %q is not recognized", c.EarthShape.Type)}
	}
	switch c.View.Position.AltitudeMode {
	case "", "absolute", "relative":
	default:
		return &Error{Reason: fmt.Sprintf("view.position.altitude_mode %q is not recognized", c.View.Position.AltitudeMode)}
	}
	for _, oc := range c.Scene.Objects {
		switch oc.AltitudeMode {
		case "", "absolute", "relative":
		default:
			return &Error{Reason: fmt.Sprintf("scene object altitude_mode %q is not recognized", oc.AltitudeMode)}
		}
	}
	return nil
}

/*****************************************************************************************************************/

// BuildEarthShape converts EarthShapeConfig into the concrete
// geodesy.EarthShape the propagator needs.
func (c *Config) BuildEarthShape() (geodesy.EarthShape, error) {
	r := c.EarthShape.Radius
	if r <= 0 {
		r = geodesy.EarthRadiusMean
	}
	switch c.EarthShape.Type {
	case "spherical":
		return geodesy.Spherical{R: r}, nil
	case "azimuthal_equidistant":
		return geodesy.AzimuthalEquidistant{R: r}, nil
	case "flat_spherical":
		return geodesy.FlatSpherical{R: r}, nil
	case "flat_distorted":
		return geodesy.FlatDistorted{R: r}, nil
	default:
		return nil, &Error{Reason: fmt.Sprintf("earth_shape.type %q is not recognized", c.EarthShape.Type)}
	}
}

/*****************************************************************************************************************/

// BuildAtmosphere converts AtmosphereConfig into a built atmosphere.Profile.
func (c *Config) BuildAtmosphere() (*atmosphere.Profile, error) {
	if c.Atmosphere.Default || len(c.Atmosphere.Breakpoints) == 0 {
		return atmosphere.USStandard1976(), nil
	}

	breakpoints := make([]atmosphere.Breakpoint, len(c.Atmosphere.Breakpoints))
	for i, bp := range c.Atmosphere.Breakpoints {
		fn, err := bp.buildFn()
		if err != nil {
			return nil, err
		}
		breakpoints[i] = atmosphere.Breakpoint{Altitude: bp.Altitude, Fn: fn}
	}

	profile := &atmosphere.Profile{
		Breakpoints: breakpoints,
		FixedH:      c.Atmosphere.FixedAltitude,
		FixedP:      c.Atmosphere.FixedPressure,
	}
	if err := atmosphere.Build(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

/*****************************************************************************************************************/

func (bp BreakpointConfig) buildFn() (atmosphere.TemperatureFunction, error) {
	switch bp.Kind {
	case "spline":
		boundary := atmosphere.Natural
		switch bp.Boundary {
		case "derivatives":
			boundary = atmosphere.Derivatives
		case "second_derivatives":
			boundary = atmosphere.SecondDerivatives
		}
		points := make([]atmosphere.Point, len(bp.Points))
		for i, p := range bp.Points {
			points[i] = atmosphere.Point{H: p.H, T: p.T}
		}
		return &atmosphere.Spline{Points: points, Boundary: boundary, D0: bp.D0, D1: bp.D1}, nil
	default: // "linear"
		return atmosphere.Linear{H0: bp.Altitude, T0: bp.BaseTemp, Gradient: bp.Gradient}, nil
	}
}

/*****************************************************************************************************************/

// BuildColoring converts ColoringConfig into a pkg/shading.Coloring.
func (c *Config) BuildColoring() shading.Coloring {
	cc := c.View.Coloring
	if cc.Type != "shaded" {
		return shading.Simple{WaterLevel: cc.WaterLevel}
	}

	lightAz := cc.LightAzimuth * geodesy.DegToRad
	lightEl := cc.LightElevation * geodesy.DegToRad
	light := shading.Normal{
		E: math.Sin(lightAz) * math.Cos(lightEl),
		N: math.Cos(lightAz) * math.Cos(lightEl),
		U: math.Sin(lightEl),
	}
	return shading.Shading{
		WaterLevel:     cc.WaterLevel,
		AmbientLight:   cc.AmbientLight,
		LightZenithDeg: 90 - cc.LightElevation,
		LightDir:       light,
	}
}

/*****************************************************************************************************************/

// Color3 reads an [r,g,b] triple of 0-1 floats from raw, or fallback when
// raw is unset.
func Color3(raw []float64, fallback [3]float64) [3]float64 {
	if len(raw) < 3 {
		return fallback
	}
	return [3]float64{raw[0], raw[1], raw[2]}
}
