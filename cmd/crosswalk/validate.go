package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openprobity/crosswalk/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <transform> <source>",
	Short: "Replay a transform record and verify its checksums",
	Long: `Re-executes the crosswalk recorded on a transform against the claimed
source file. The validation passes only when both the source checksum and
the recomputed destination checksum match the recorded values.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		opts := cli.ValidateOptions{
			ConfigPath: configPath,
			Transform:  args[0],
			Source:     args[1],
			Debug:      debug,
		}

		if err := cli.Validate(cmd.Context(), opts); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
