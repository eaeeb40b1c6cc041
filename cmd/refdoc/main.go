package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "refdoc",
		Short: "Schema reference documentation generator",
		Long: `refdoc resolves a directory of versioned JSON schemas into reference
documentation, following $ref and anyOf chains, merging version and
deprecation metadata, and optionally filtering output by a profile.`,
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
