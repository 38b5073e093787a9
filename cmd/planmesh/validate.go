package main

import (
	"context"

	"github.com/hupe1980/planmesh/config"
	"github.com/spf13/cobra"
)

func validateCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan.yaml>",
		Short: "Build a plan definition without running it and print its structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cfg, builtinPlugins()...)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			p, err := rt.mesh.LoadPlan(args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd, p)
		},
	}
}
