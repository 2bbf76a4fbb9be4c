package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"benchdash/internal/benchmark"
	"benchdash/internal/render"
	"benchdash/internal/source"

	"github.com/spf13/cobra"
)

var (
	benchPattern string
	benchCount   int
	benchCommit  string
	benchBranch  string
	benchSaveDir string
	benchJSON    bool
)

// benchExecCommand allows mocking in tests.
var benchExecCommand = exec.Command

// newRunnerFunc allows mocking in tests.
var newRunnerFunc = func(bench string, count int) benchmark.Runner {
	return &benchmark.GoRunner{Bench: bench, Count: count}
}

var benchCmd = &cobra.Command{
	Use:   "bench [packages]",
	Short: "Run go benchmarks and record them as one commit",
	Long: `Executes 'go test -bench' for the specified packages (defaulting to ./...)
and converts the results into benchmark records of the current commit. With
--save-dir the raw output is kept as <unix time>-<commit>.txt, which the
gobench source reads back as history.`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().StringVar(&benchPattern, "bench", ".", "Benchmark regexp passed to -bench")
	benchCmd.Flags().IntVar(&benchCount, "count", 1, "Runs per benchmark")
	benchCmd.Flags().StringVar(&benchCommit, "commit", "", "Commit of the run (default git HEAD)")
	benchCmd.Flags().StringVarP(&benchBranch, "branch", "b", "", "Branch of the run (default the configured default branch)")
	benchCmd.Flags().StringVar(&benchSaveDir, "save-dir", "", "Directory to keep raw output in")
	benchCmd.Flags().BoolVar(&benchJSON, "json", false, "Output records as benchmarksrun rows")
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchCount < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", benchCount)
	}

	packages := args
	if len(packages) == 0 {
		packages = []string{"./..."}
	}

	commit := benchCommit
	if commit == "" {
		var err error
		if commit, err = getGitCommit(); err != nil {
			return fmt.Errorf("could not determine commit, pass --commit: %w", err)
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Running benchmarks for %s at %s\n", strings.Join(packages, " "), benchmark.ShortCommit(commit))

	results, err := newRunnerFunc(benchPattern, benchCount).Run(cmd.Context(), packages...)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No benchmarks found.")
		return nil
	}

	if benchSaveDir != "" {
		path, err := saveBenchOutput(benchSaveDir, commit, time.Now(), results)
		if err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to %s\n", path)
	}

	if benchJSON {
		records := benchmark.GoRecords(results, commit, branchOrDefault(benchBranch), 0)
		return writeJSON(cmd.OutOrStdout(), source.Rows(records))
	}

	printBenchResults(cmd, results)
	return nil
}

// saveBenchOutput writes results where the gobench source finds them. The
// unix time prefix orders the files oldest first.
func saveBenchOutput(dir, commit string, at time.Time, results []benchmark.GoResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("%d-%s.txt", at.Unix(), commit))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := benchmark.WriteOutput(f, results); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func getGitCommit() (string, error) {
	out, err := benchExecCommand("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return "", err
	}
	commit := strings.TrimSpace(string(out))
	if commit == "" {
		return "", fmt.Errorf("git returned no commit")
	}
	return commit, nil
}

func printBenchResults(cmd *cobra.Command, results []benchmark.GoResult) {
	t := newTable("BENCHMARK", "ITER", "NS/OP", "MB/S", "B/OP", "ALLOCS/OP")
	for _, r := range results {
		mbs := "-"
		if r.MBPerSec > 0 {
			mbs = render.FormatValue(r.MBPerSec)
		}
		t.Row(r.Name,
			fmt.Sprint(r.Iterations),
			fmt.Sprintf("%.2f", r.NsPerOp),
			mbs,
			fmt.Sprint(r.BytesPerOp),
			fmt.Sprint(r.AllocsPerOp))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
}
