package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/isasim/benchmarks"
	"github.com/sarchlab/isasim/timing/cache"
)

// benchCmd runs the built-in microbenchmarks.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the built-in microbenchmarks and report their timing.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		format, _ := flags.GetString("format")
		coreOnly, _ := flags.GetBool("core")
		noPipeline, _ := flags.GetBool("no-pipeline")
		noCache, _ := flags.GetBool("no-cache")
		configPath, _ := flags.GetString("config")

		config := benchmarks.DefaultConfig()
		config.Output = cmd.OutOrStdout()
		config.UsePipeline = !noPipeline
		config.UseCache = !noCache
		config.Verbose = format == "text"

		if configPath != "" {
			hierarchy, err := cache.LoadConfig(configPath)
			if err != nil {
				return err
			}
			config.Hierarchy = hierarchy
		}

		harness := benchmarks.NewHarness(config)
		if coreOnly {
			harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
		} else {
			harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
		}

		results, err := harness.RunAll()
		if err != nil {
			return err
		}

		switch format {
		case "text":
			harness.PrintResults(results)
		case "csv":
			harness.PrintCSV(results)
		case "json":
			return harness.PrintJSON(results)
		default:
			return fmt.Errorf("unknown format %q", format)
		}

		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	benchCmd.Flags().String("format", "text", "output format: text, csv or json")
	benchCmd.Flags().Bool("core", false, "run only the core benchmarks")
	benchCmd.Flags().Bool("no-pipeline", false,
		"let only one instruction be in flight at a time")
	benchCmd.Flags().Bool("no-cache", false,
		"send every access to the backing store")
	benchCmd.Flags().String("config", "", "JSON file describing the cache hierarchy")

	rootCmd.AddCommand(benchCmd)
}
