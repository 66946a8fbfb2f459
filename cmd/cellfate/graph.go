package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellfate"
	"github.com/aretw0/cellfate/internal/logging"
	"github.com/aretw0/cellfate/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the regulatory network as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph LR) of the gene network. With --cell, the model is
run first and the nodes are coloured by that cell's final gene state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cellID, _ := cmd.Flags().GetString("cell")

		if cellID == "" {
			path, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sim, err := cellfate.New(path, cellfate.WithConfig(cfg), cellfate.WithLogger(logging.NewNop()))
			if err != nil {
				return err
			}
			defer sim.Close()
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(sim.Network(), nil))
			return nil
		}

		sim, err := newSimulation(cmd, logging.NewNop())
		if err != nil {
			return err
		}
		defer sim.Close()
		if err := sim.Run(cmd.Context()); err != nil {
			return err
		}
		snap, err := sim.Snapshot(cellID)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(sim.Network(), &graph.StateOverlay{States: snap.States}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addSimulationFlags(graphCmd)
	graphCmd.Flags().String("cell", "", "Run the model and overlay this cell's final gene state")
}
