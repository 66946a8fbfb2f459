package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellfate"
	"github.com/aretw0/cellfate/internal/logging"
	"github.com/aretw0/cellfate/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "cellfate",
	Short: "cellfate simulates cell-fate decisions driven by Boolean gene networks",
	Long: `cellfate runs a population of cells, each evaluating its own copy of a Boolean
gene-regulatory network against the substances in its environment, and reports the
resulting phenotypes.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "model.yaml", "Model configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", string(logging.FormatAuto), "Log format: auto, text, json")
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	return logging.New(level, logging.Format(format)), nil
}

// loadConfig reads --config and applies the simulation overrides given on the command line.
func loadConfig(cmd *cobra.Command) (string, config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return path, cfg, err
	}

	flags := cmd.Flags()
	if flags.Lookup("cells") != nil && flags.Changed("cells") {
		cfg.Simulation.Cells, _ = flags.GetInt("cells")
	}
	if flags.Lookup("steps") != nil && flags.Changed("steps") {
		cfg.Scheduler.TotalSteps, _ = flags.GetInt("steps")
	}
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		cfg.Simulation.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Lookup("mode") != nil && flags.Changed("mode") {
		cfg.Simulation.Mode, _ = flags.GetString("mode")
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		cfg.Simulation.Workers, _ = flags.GetInt("workers")
	}
	return path, cfg, nil
}

func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("cells", 0, "Override simulation.cells")
	cmd.Flags().Int("steps", 0, "Override scheduler.total_steps")
	cmd.Flags().Uint64("seed", 0, "Override simulation.seed")
	cmd.Flags().String("mode", "", "Override simulation.mode (serial or parallel)")
	cmd.Flags().Int("workers", 0, "Override simulation.workers")
}

// newSimulation builds and seeds a simulation from the command flags.
func newSimulation(cmd *cobra.Command, logger *slog.Logger, opts ...cellfate.Option) (*cellfate.Simulation, error) {
	path, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	opts = append([]cellfate.Option{cellfate.WithConfig(cfg), cellfate.WithLogger(logger)}, opts...)
	sim, err := cellfate.New(path, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := sim.Seed(cmd.Context(), 0); err != nil {
		_ = sim.Close()
		return nil, err
	}
	return sim, nil
}
