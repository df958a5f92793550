package main

import (
	"fmt"

	"github.com/GoSim-25-26J-441/brownout-core/internal/improvement"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/spf13/cobra"
)

type compareOptions struct {
	scenarioFile string
	objective    string
	maxParallel  int
}

func newCompareCommand() *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run a scenario under every policy and rank the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			logger.SetDefault(logger.NewText(logLevel, cmd.ErrOrStderr()))

			scenario, err := config.LoadScenario(opts.scenarioFile)
			if err != nil {
				return err
			}
			objective, err := improvement.NewObjectiveFunction(opts.objective)
			if err != nil {
				return err
			}
			comparison, err := improvement.ComparePolicies(cmd.Context(), scenario, objective,
				improvement.WithMaxParallel(opts.maxParallel),
				improvement.WithLogger(logger.Default))
			if comparison != nil {
				if werr := writeJSON(cmd.OutOrStdout(), comparison); werr != nil {
					return werr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.scenarioFile, "file", "f", "", "scenario YAML file")
	cmd.Flags().StringVar(&opts.objective, "objective", "", fmt.Sprintf("ranking objective %v", improvement.ObjectiveTypes()))
	cmd.Flags().IntVar(&opts.maxParallel, "max-parallel", 4, "simulations run concurrently")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
