/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope

/*****************************************************************************************************************/

package main

/*****************************************************************************************************************/

import (
	"os"

	"github.com/terrainscope/terrainscope/cmd"
)

/*****************************************************************************************************************/

func main() {
	os.Exit(cmd.Execute())
}

/*****************************************************************************************************************/
