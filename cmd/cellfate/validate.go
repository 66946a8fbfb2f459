package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellfate"
	"github.com/aretw0/cellfate/internal/logging"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the model for consistency",
	Long:  `Parses every logic rule, checks node references, associations and the scheduler, and reports all problems at once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		sim, err := cellfate.New(path, cellfate.WithConfig(cfg), cellfate.WithLogger(logging.NewNop()))
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		defer sim.Close()

		topo := sim.Topology()
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d nodes, %d inputs, %d outputs\n",
			path, len(topo.Nodes), len(topo.Inputs), len(topo.Outputs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
