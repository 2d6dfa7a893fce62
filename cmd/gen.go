/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/cmd

/*****************************************************************************************************************/

package cmd

/*****************************************************************************************************************/

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrainscope/terrainscope/internal/config"
	"github.com/terrainscope/terrainscope/internal/output"
	"github.com/terrainscope/terrainscope/internal/render"
	"github.com/terrainscope/terrainscope/pkg/shading"
)

/*****************************************************************************************************************/

// exitCode is the process exit code Execute returns, set by whichever
// subcommand's Run closure ran: 0 success, 1 invalid config, 2 I/O error,
// 3 render abort.
var exitCode int

/*****************************************************************************************************************/

func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

/*****************************************************************************************************************/

var (
	genConfigPath string
	genOutputFile string
	genAzimuth    float64
	genElevation  float64
	genFOV        float64
)

/*****************************************************************************************************************/

var GenCommand = &cobra.Command{
	Use:   "gen",
	Short: "gen renders a single panorama frame from a YAML render configuration.",
	Long:  "gen renders a single panorama frame from a YAML render configuration.",
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.New(os.Stderr, "terrainscope: ", 0)

		cfg, err := config.Load(genConfigPath)
		if err != nil {
			logger.Printf("failed to load config: %v", err)
			exitCode = 1
			return
		}

		applyOverrides(cfg)

		if err := cfg.Validate(); err != nil {
			logger.Printf("invalid config: %v", err)
			exitCode = 1
			return
		}

		result, err := render.Run(context.Background(), cfg, logger)
		if err != nil {
			switch err.(type) {
			case *config.Error:
				logger.Printf("invalid config: %v", err)
				exitCode = 1
			case *render.Cancelled:
				logger.Printf("render aborted: %v", err)
				exitCode = 3
			default:
				logger.Printf("render failed: %v", err)
				exitCode = 2
			}
			return
		}

		ann := output.Annotations{
			ShowEyeLevel: cfg.Output.ShowEyeLevel,
			EyeLevelRow:  cfg.Output.Height/2 + int(math.Round(cfg.View.Frame.Elevation*float64(cfg.Output.Width)/cfg.View.Frame.FOV)),
		}
		if len(cfg.Output.Ticks) > 0 {
			ann.Ticks = make([]shading.TickDef, len(cfg.Output.Ticks))
			for i, t := range cfg.Output.Ticks {
				ann.Ticks[i] = shading.TickDef{AzimuthDeg: t.Azimuth, Size: t.Size, Label: t.Label}
			}
			ann.ColumnAzimuths = columnAzimuths(cfg.Output.Width, cfg.View.Frame.Azimuth, cfg.View.Frame.FOV)
		}

		if err := output.WriteImage(cfg.Output.File, result.Image, ann); err != nil {
			logger.Printf("failed to write image: %v", err)
			exitCode = 2
			return
		}

		if cfg.Output.FileMetadata != "" {
			if err := output.WriteMetadata(cfg.Output.FileMetadata, cfg.Output.Width, cfg.Output.Height, result.Meta); err != nil {
				logger.Printf("failed to write metadata: %v", err)
				exitCode = 2
				return
			}
		}

		fmt.Fprintf(os.Stderr, "terrainscope: wrote %s (run %s)\n", cfg.Output.File, result.RunID)
		exitCode = 0
	},
}

/*****************************************************************************************************************/

// columnAzimuths returns each output column's center azimuth under the
// Fast generator's cylindrical equirectangular mapping, used to resolve which column a tick mark's azimuth falls on regardless of
// which generator actually rendered the frame.
func columnAzimuths(width int, centerAzimuth, fov float64) []float64 {
	cols := make([]float64, width)
	for col := 0; col < width; col++ {
		az := centerAzimuth - fov/2 + fov*(float64(col)+0.5)/float64(width)
		cols[col] = math.Mod(az+360, 360)
	}
	return cols
}

/*****************************************************************************************************************/

// applyOverrides layers any flag overrides given on the command line on
// top of the decoded config.
func applyOverrides(cfg *config.Config) {
	if genOutputFile != "" {
		cfg.Output.File = genOutputFile
	}
	if genAzimuth != 0 {
		cfg.View.Frame.Azimuth = genAzimuth
	}
	if genElevation != 0 {
		cfg.View.Frame.Elevation = genElevation
	}
	if genFOV != 0 {
		cfg.View.Frame.FOV = genFOV
	}
}

/*****************************************************************************************************************/

func init() {
	GenCommand.Flags().StringVarP(
		&genConfigPath,
		"config",
		"c",
		"",
		"Path to the YAML render configuration",
	)
	GenCommand.MarkFlagRequired("config")

	GenCommand.Flags().StringVarP(
		&genOutputFile,
		"output",
		"o",
		"",
		"Override output.file from the config",
	)

	GenCommand.Flags().Float64VarP(
		&genAzimuth,
		"azimuth",
		"",
		0,
		"Override view.frame.azimuth from the config, degrees",
	)

	GenCommand.Flags().Float64VarP(
		&genElevation,
		"elevation",
		"",
		0,
		"Override view.frame.elevation from the config, degrees",
	)

	GenCommand.Flags().Float64VarP(
		&genFOV,
		"fov",
		"",
		0,
		"Override view.frame.fov from the config, degrees",
	)
}

/*****************************************************************************************************************/
