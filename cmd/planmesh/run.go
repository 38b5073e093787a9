package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/planmesh/config"
	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/plan"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func runCMD(cfgPath *string) *cobra.Command {
	var (
		sets      []string
		stepwise  bool
		trace     bool
		showState bool
		timeout   time.Duration
	)

	run := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Run a plan definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			overrides, err := parseSets(sets)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cfg, builtinPlugins()...)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			if trace {
				sink := func(message string) { fmt.Fprintln(cmd.ErrOrStderr(), message) }
				for _, t := range []plan.CallbackType{plan.CallbackBeforeStep, plan.CallbackAfterStep, plan.CallbackOnError} {
					rt.callbacks.RegisterCallback(plan.NewLoggingCallback(t, sink))
				}
			}

			p, err := rt.mesh.LoadPlan(args[0])
			if err != nil {
				return err
			}
			p.State().Merge(overrides)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			start := time.Now()
			if stepwise {
				err = runSteps(ctx, cmd, rt, p)
			} else {
				var res *core.FunctionResult
				res, err = rt.mesh.Invoke(ctx, p, nil)
				if err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), res.String())
				}
			}
			rt.logger.LogPlanExecution(p.Name(), p.NextStepIndex(), time.Since(start), err)
			if err != nil {
				return err
			}

			if showState {
				return printJSON(cmd, p.State())
			}
			return nil
		},
	}

	run.Flags().StringArrayVar(&sets, "set", nil, "state override as key=value (repeatable)")
	run.Flags().BoolVar(&stepwise, "step", false, "run one step at a time and print each result")
	run.Flags().BoolVar(&trace, "trace", false, "print step lifecycle events to stderr")
	run.Flags().BoolVar(&showState, "state", false, "print the final plan state as JSON")
	run.Flags().DurationVar(&timeout, "timeout", 0, "abort the run after this duration")

	return run
}

func runSteps(ctx context.Context, cmd *cobra.Command, rt *runtime, p *plan.Plan) error {
	for p.HasNextStep() {
		index := p.NextStepIndex()
		step := p.Steps()[index]

		start := time.Now()
		res, err := p.InvokeNextStep(ctx)
		rt.logger.LogStepExecution(core.FullyQualifiedName(step), index, time.Since(start), err)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d %s: %s\n", index, core.FullyQualifiedName(step), res.String())
	}
	return nil
}

func parseSets(sets []string) (*core.Arguments, error) {
	args := core.NewArguments()
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", s)
		}
		args.Set(key, value)
	}
	return args, nil
}

// printJSON writes v as JSON, indented when the output is a terminal.
func printJSON(cmd *cobra.Command, v any) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
