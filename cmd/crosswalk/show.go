package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openprobity/crosswalk/internal/cli"
)

var showCmd = &cobra.Command{
	Use:   "show <kind> <name>",
	Short: "Render a stored definition as a terminal report",
	Long:  `Displays a crosswalk or transform definition, by stored name or JSON file path.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		opts := cli.ShowOptions{
			ConfigPath: configPath,
			Kind:       args[0],
			Name:       args[1],
			Debug:      debug,
		}

		if err := cli.Show(cmd.Context(), opts); err != nil {
			fmt.Printf("Show failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "List stored definitions of one kind",
	Long:  `Lists stored definition names: schema, crosswalk, or transform.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		if err := cli.List(cmd.Context(), configPath, args[0]); err != nil {
			fmt.Printf("List failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
}
