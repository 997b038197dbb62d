// Command kauma is the laboratory engine's CLI entrypoint: it reads a
// request document from the path given as its single argument, dispatches
// every test case, and writes the response document to standard output.
//
// Reference: kauma.py's main() in the original kauma source.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kauma-project/kauma/internal/dispatch"
)

var (
	seed    int64
	verbose bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kauma <request.json>",
		Short:         "Run a kauma laboratory request document and print its responses",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runKauma,
	}
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for the equal-degree-factorization PRNG")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	return cmd
}

func runKauma(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("kauma: constructing logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	requestPath := args[0]
	requestJSON, err := os.ReadFile(requestPath)
	if err != nil {
		return fmt.Errorf("kauma: reading request document: %w", err)
	}

	responseJSON, err := dispatch.Run(requestJSON, seed, logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, string(responseJSON))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
