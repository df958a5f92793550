package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/GoSim-25-26J-441/brownout-core/internal/engine"
	"github.com/GoSim-25-26J-441/brownout-core/internal/policy"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/spf13/cobra"
)

type runOptions struct {
	scenarioFile string
	policy       string
	runID        string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scenario and print its report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			logger.SetDefault(logger.NewText(logLevel, cmd.ErrOrStderr()))
			return runScenario(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.scenarioFile, "file", "f", "", "scenario YAML file")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "override brownout.policy from the scenario")
	cmd.Flags().StringVar(&opts.runID, "run-id", "cli", "identifier used in logs")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runScenario(cmd *cobra.Command, opts *runOptions) error {
	scenario, err := config.LoadScenario(opts.scenarioFile)
	if err != nil {
		return err
	}

	simOpts := []engine.SimulationOption{engine.WithLogger(logger.Default)}
	if opts.policy != "" {
		kind, err := policy.ParseKind(opts.policy)
		if err != nil {
			return err
		}
		simOpts = append(simOpts, engine.WithPolicy(kind))
	}

	sim, err := engine.NewSimulation(opts.runID, scenario, simOpts...)
	if err != nil {
		return fmt.Errorf("simulation setup failed: %w", err)
	}
	report, err := sim.Run(cmd.Context())
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
