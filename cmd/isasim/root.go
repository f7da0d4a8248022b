package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var opts = options{
	usePipeline: true,
	useCache:    true,
}

// rootCmd runs a program from the command line.
var rootCmd = &cobra.Command{
	Use:   "isasim [flags] <program>",
	Short: "A cycle-level simulator of a 5-stage pipeline and its caches.",
	Long: `isasim loads a program image, runs it through a 5-stage pipeline ` +
		`backed by a multi-level cache hierarchy and reports cycle counts, ` +
		`hazard stalls and cache hit rates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts.program = args[0]

		if noPipeline, _ := cmd.Flags().GetBool("no-pipeline"); noPipeline {
			opts.usePipeline = false
		}
		if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
			opts.useCache = false
		}

		level := slog.LevelInfo
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
			opts.verbose = true
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: level}))

		result, err := simulate(opts, logger)
		if err != nil {
			return err
		}

		result.print(cmd.OutOrStdout())
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute loads the environment, runs the root command and exits through
// atexit so that trace files are closed.
func Execute() {
	if err := loadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}

	rootCmd.Flags().StringVar(&opts.config, "config", os.Getenv("ISASIM_CONFIG"),
		"JSON file describing the cache hierarchy")
	rootCmd.Flags().StringVar(&opts.trace, "trace", os.Getenv("ISASIM_TRACE"),
		"write a CSV trace of cache and pipeline events to this file (without .csv)")
	rootCmd.Flags().Bool("no-pipeline", false,
		"let only one instruction be in flight at a time")
	rootCmd.Flags().Bool("no-cache", false,
		"send every access to the backing store")
	rootCmd.Flags().BoolP("verbose", "v", false,
		"log cache and pipeline events")
	rootCmd.Flags().Uint64Var(&opts.maxCycles, "max-cycles", 10_000_000,
		"stop with an error if the program has not halted after this many cycles")
	rootCmd.Flags().Float64Var(&opts.freqGHz, "freq", 1,
		"clock frequency in GHz used to report simulated time")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadEnv reads the given .env files, or ".env" when none are given. A
// missing file is not an error.
func loadEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load environment: %w", err)
}
