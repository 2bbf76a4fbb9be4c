package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"benchdash/internal/benchmark"
	"benchdash/internal/config"
	"benchdash/internal/source"
	"benchdash/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit
var cfgFile string
var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:   "benchdash",
	Short: "Benchmark history dashboard",
	Long: `benchdash turns the benchmark runs stored by a CI backend into chart
series: one line per benchmark metric across commits, with the default
branch as baseline and an optional second branch overlaid.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
			logCloser = nil
		}
	},
}

// newSourceFunc allows tests to serve records without a backend.
var newSourceFunc = func(cfg source.Config) (source.Source, error) {
	return source.New(cfg)
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().String("source", "", "Record source ("+joinTypes()+")")
	rootCmd.PersistentFlags().String("endpoint", "", "GraphQL endpoint")
	rootCmd.PersistentFlags().String("dsn", "", "Postgres connection string")
	rootCmd.PersistentFlags().String("path", "", "SQLite database, JSON export or go bench glob")
	rootCmd.PersistentFlags().String("default-branch", "", "Baseline branch")
	rootCmd.PersistentFlags().String("band", "", "Uncertainty band of multi-run commits (stddev, ci)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("source.type", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("source.endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("source.dsn", rootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("source.path", rootCmd.PersistentFlags().Lookup("path"))
	viper.BindPFlag("default_branch", rootCmd.PersistentFlags().Lookup("default-branch"))
	viper.BindPFlag("band", rootCmd.PersistentFlags().Lookup("band"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
		return
	}

	if err := config.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
		return
	}

	logCloser = telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log_file"))
}

// branchOrDefault falls back to the configured default branch.
func branchOrDefault(branch string) string {
	if branch != "" {
		return branch
	}
	return viper.GetString("default_branch")
}

// loadIndex fetches one snapshot from the configured source.
func loadIndex(ctx context.Context) (*benchmark.Index, error) {
	src, err := newSourceFunc(config.Source())
	if err != nil {
		return nil, err
	}
	defer src.Close()

	start := time.Now()
	records, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("fetched records",
		slog.String("source", src.Name()),
		slog.Int("count", len(records)),
		slog.Duration("took", time.Since(start)))

	return benchmark.NewIndex(records, config.IndexOptions()...), nil
}
