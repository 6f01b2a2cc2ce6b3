package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openprobity/crosswalk"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of crosswalk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("crosswalk version %s\n", strings.TrimSpace(crosswalk.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
