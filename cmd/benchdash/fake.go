package main

import (
	"fmt"
	"log/slog"

	"benchdash/internal/benchmark"
	"benchdash/internal/fake"
	"benchdash/internal/source"

	"github.com/spf13/cobra"
)

var (
	fakeSteps      int
	fakeNames      []string
	fakeBranch     string
	fakeSeed       uint64
	fakeFromLatest bool
)

var fakeCmd = &cobra.Command{
	Use:   "fake",
	Short: "Generate a synthetic benchmark history",
	Long: `Walks backwards from a seed commit producing plausible history and
prints it as benchmarksrun rows. Every name shares the same commits. The output can be read back with
--source file. With --from-latest the seed is the newest commit of the first
benchmark on the configured source.`,
	RunE: runFake,
}

func init() {
	rootCmd.AddCommand(fakeCmd)
	fakeCmd.Flags().IntVar(&fakeSteps, "steps", fake.DefaultSteps, "Number of commits to generate")
	fakeCmd.Flags().StringSliceVar(&fakeNames, "name", []string{"bench_fake"}, "Benchmark names")
	fakeCmd.Flags().StringVarP(&fakeBranch, "branch", "b", "", "Branch of the generated commits (default the configured default branch)")
	fakeCmd.Flags().Uint64Var(&fakeSeed, "seed", 0, "Random seed (0 picks one)")
	fakeCmd.Flags().BoolVar(&fakeFromLatest, "from-latest", false, "Seed from the newest commit of the configured source")
}

func runFake(cmd *cobra.Command, args []string) error {
	if fakeSteps <= 0 {
		return fmt.Errorf("--steps must be positive, got %d", fakeSteps)
	}
	if len(fakeNames) == 0 {
		return fmt.Errorf("at least one --name is required")
	}

	g := fake.New(nil)
	if fakeSeed != 0 {
		g = fake.NewSeeded(fakeSeed)
	}
	g.Steps = fakeSteps

	seed := fake.DefaultSeed()
	if fakeFromLatest {
		var err error
		if seed, err = latestSeed(cmd); err != nil {
			return err
		}
	}

	records, err := source.NewFake(g, branchOrDefault(fakeBranch), fakeNames...).WithSeed(seed).Fetch(cmd.Context())
	if err != nil {
		return err
	}
	slog.Debug("generated records", slog.Int("count", len(records)), slog.String("seed", seed.Hash))

	return writeJSON(cmd.OutOrStdout(), source.Rows(records))
}

func latestSeed(cmd *cobra.Command) (fake.Commit, error) {
	idx, err := loadIndex(cmd.Context())
	if err != nil {
		return fake.Commit{}, err
	}

	names := idx.Names()
	if len(names) == 0 {
		return fake.Commit{}, fmt.Errorf("seed from source: %w", benchmark.ErrNoMatch)
	}

	records := idx.Select(names[0], idx.DefaultBranch())
	if len(records) == 0 {
		return fake.Commit{}, fmt.Errorf("seed from %s on %s: %w", names[0], idx.DefaultBranch(), benchmark.ErrNoMatch)
	}

	latest := records[len(records)-1].Commit
	var runs []benchmark.Record
	for _, r := range records {
		if r.Commit == latest {
			runs = append(runs, r)
		}
	}
	return fake.SeedFromRecords(runs)
}
