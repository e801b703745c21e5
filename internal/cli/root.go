// Package cli implements the checkbeer command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "checkbeer",
	Short: "Package integrity probe",
	Long: "Runs a pipeline of tamper detectors against a running package: parcel\n" +
		"creator identity, declared field shape, classloader provenance, package\n" +
		"manager proxy identity, component factory, and install path integrity.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
