/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/cmd

/*****************************************************************************************************************/

package cmd

/*****************************************************************************************************************/

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

/*****************************************************************************************************************/

// ViewCommand is a stub: an interactive viewer is out of scope for this
// repository. It exists only so the CLI surface documented alongside gen
// stays complete, and it always fails loudly rather than silently doing
// nothing.
var ViewCommand = &cobra.Command{
	Use:   "view",
	Short: "view is unimplemented; an interactive viewer is out of scope.",
	Long:  "view is unimplemented; an interactive viewer is out of scope. Use gen to render a frame to disk.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stderr, "terrainscope: the view command is not implemented, use gen instead")
		exitCode = 1
	},
}

/*****************************************************************************************************************/
