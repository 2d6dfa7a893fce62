/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/cmd

/*****************************************************************************************************************/

package cmd

/*****************************************************************************************************************/

import (
	"math"
	"testing"

	"github.com/terrainscope/terrainscope/internal/config"
)

/*****************************************************************************************************************/

func TestColumnAzimuthsSpansFOVAroundCenter(t *testing.T) {
	cols := columnAzimuths(4, 90, 40)

	if math.Abs(cols[0]-75) > 1e-9 {
		t.Errorf("expected the first column's azimuth near 75, got %v", cols[0])
	}
	if math.Abs(cols[3]-105) > 1e-9 {
		t.Errorf("expected the last column's azimuth near 105, got %v", cols[3])
	}
}

/*****************************************************************************************************************/

func TestColumnAzimuthsWrapsAroundNorth(t *testing.T) {
	cols := columnAzimuths(2, 0, 20)
	for _, az := range cols {
		if az < 0 || az >= 360 {
			t.Errorf("expected a wrapped azimuth in [0, 360), got %v", az)
		}
	}
}

/*****************************************************************************************************************/

func TestApplyOverridesLeavesZeroFieldsUntouched(t *testing.T) {
	cfg := &config.Config{
		View: config.View{Frame: config.FrameAngles{Azimuth: 10, Elevation: 5, FOV: 60}},
		Output: config.Output{File: "base.png"},
	}

	genOutputFile, genAzimuth, genElevation, genFOV = "", 0, 0, 0
	applyOverrides(cfg)

	if cfg.Output.File != "base.png" {
		t.Errorf("expected the output file to be unchanged, got %q", cfg.Output.File)
	}
	if cfg.View.Frame.Azimuth != 10 || cfg.View.Frame.Elevation != 5 || cfg.View.Frame.FOV != 60 {
		t.Errorf("expected the frame angles to be unchanged, got %+v", cfg.View.Frame)
	}
}

/*****************************************************************************************************************/

func TestApplyOverridesAppliesNonZeroFields(t *testing.T) {
	cfg := &config.Config{
		View: config.View{Frame: config.FrameAngles{Azimuth: 10, Elevation: 5, FOV: 60}},
		Output: config.Output{File: "base.png"},
	}

	genOutputFile, genAzimuth, genElevation, genFOV = "override.png", 270, -15, 90
	defer func() { genOutputFile, genAzimuth, genElevation, genFOV = "", 0, 0, 0 }()

	applyOverrides(cfg)

	if cfg.Output.File != "override.png" {
		t.Errorf("expected the output file to be overridden, got %q", cfg.Output.File)
	}
	if cfg.View.Frame.Azimuth != 270 || cfg.View.Frame.Elevation != -15 || cfg.View.Frame.FOV != 90 {
		t.Errorf("expected the frame angles to be overridden, got %+v", cfg.View.Frame)
	}
}

/*****************************************************************************************************************/
