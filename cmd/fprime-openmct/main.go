// Package main is the entry point for the F´ Open MCT dictionary adapter.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fprime-openmct",
		Short: "Expose an F´ telemetry dictionary as Open MCT domain objects",
		Long: `fprime-openmct translates an F´ deployment's telemetry dictionary into
the folder and telemetry-point objects of an Open MCT style host.

Examples:
  fprime-openmct serve --config config.yaml
  fprime-openmct convert --input channels.yaml --out-dir javascript/
  fprime-openmct validate FPrimeDeploymentTopologyAppDictionary.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newConvertCmd(), newValidateCmd())
	return root
}
