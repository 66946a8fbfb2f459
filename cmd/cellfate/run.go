package main

import (
	"fmt"
	"io"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellfate"
	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/observability"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation to completion",
	Long:  `Seeds the population from the configuration, runs every global step and prints the final phenotype of each cell.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		sim, err := newSimulation(cmd, logger,
			cellfate.WithLifecycleHooks(observability.LoggingHooks(logger)))
		if err != nil {
			return err
		}
		defer sim.Close()

		if err := sim.Run(ctx); err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		if quiet {
			return nil
		}
		return printReport(cmd.OutOrStdout(), sim)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSimulationFlags(runCmd)
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the final report")
}

func printReport(out io.Writer, sim *cellfate.Simulation) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CELL\tSTEP\tPHENOTYPE")

	counts := make(map[domain.Phenotype]int)
	for _, id := range sim.CellIDs() {
		snap, err := sim.Snapshot(id)
		if err != nil {
			return err
		}
		counts[snap.Phenotype]++
		fmt.Fprintf(tw, "%s\t%d\t%s\n", id, snap.Step, snap.Phenotype)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	phenotypes := make([]string, 0, len(counts))
	for p := range counts {
		phenotypes = append(phenotypes, string(p))
	}
	sort.Strings(phenotypes)

	fmt.Fprintf(out, "\n%d steps, %d cells\n", sim.Clock(), len(sim.CellIDs()))
	for _, p := range phenotypes {
		fmt.Fprintf(out, "  %-14s %d\n", p, counts[domain.Phenotype(p)])
	}
	return nil
}
