package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellfate"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cellfate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cellfate version %s\n", cellfate.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
