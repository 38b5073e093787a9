// Command planmesh runs and validates YAML plan definitions against the
// built-in math and text plugins.
//
//	planmesh run examples/plans/math_chain.yaml --set input=2
//	planmesh run examples/plans/math_chain.yaml --step --trace
//	planmesh validate examples/plans/math_chain.yaml
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCMD().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCMD() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "planmesh",
		Short:        "Run plans of native and prompt functions",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./planmesh.yaml)")

	root.AddCommand(runCMD(&cfgPath), validateCMD(&cfgPath))

	return root
}
