/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/cmd

/*****************************************************************************************************************/

package cmd

/*****************************************************************************************************************/

import (
	"github.com/spf13/cobra"
)

/*****************************************************************************************************************/

var rootCommand = &cobra.Command{
	Use:   "terrainscope",
	Short: "terrainscope renders photorealistic DEM panoramas with Earth curvature and atmospheric refraction.",
	Long:  "terrainscope renders photorealistic DEM panoramas with Earth curvature and atmospheric refraction.",
}

/*****************************************************************************************************************/

func init() {
	rootCommand.AddCommand(GenCommand)
	rootCommand.AddCommand(ViewCommand)
}

/*****************************************************************************************************************/

// Execute runs the root command and returns the process exit code:
// 0 on success, 1 on invalid config, 2 on I/O error, 3 on render abort.
func Execute() int {
	if err := rootCommand.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return exitCode
}

/*****************************************************************************************************************/
