package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"benchdash/internal/benchmark"
	"benchdash/internal/source"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand executes a cobra command and returns its output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	resetFlags(root)
	oldExit := exit
	exit = func(code int) {
		if code != 0 {
			panic(fmt.Sprintf("exit-%d", code))
		}
	}
	defer func() { exit = oldExit }()
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "exit-") {
				return
			}
			panic(r)
		}
	}()
	root.SetArgs(args)
	b := new(bytes.Buffer)
	root.SetOut(b)
	root.SetErr(b)
	root.SetIn(bytes.NewBufferString(""))
	err := root.Execute()
	return b.String(), err
}

// executeStdout is executeCommand with stderr discarded, for commands whose
// stdout is parsed.
func executeStdout(root *cobra.Command, args ...string) (string, error) {
	out := new(bytes.Buffer)
	defer root.SetErr(nil)
	resetFlags(root)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	err := root.Execute()
	return out.String(), err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			var def []string
			if trimmed := strings.Trim(f.DefValue, "[]"); trimmed != "" {
				def = strings.Split(trimmed, ",")
			}
			sv.Replace(def)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// withRecords serves records in place of the configured source.
func withRecords(t *testing.T, records []benchmark.Record) {
	t.Helper()
	old := newSourceFunc
	newSourceFunc = func(source.Config) (source.Source, error) {
		return &source.Static{Records: records}, nil
	}
	t.Cleanup(func() { newSourceFunc = old })
}

// testRecords has five master commits of bench_a and bench_b and five runs
// of bench_a on pr-1, all about twice as slow as master.
func testRecords() []benchmark.Record {
	var out []benchmark.Record
	for i := range 5 {
		commit := fmt.Sprintf("c%d", i+1)
		out = append(out,
			benchmark.Record{Name: "bench_a", Commit: commit, Branch: "master", Seq: int64(2*i + 1),
				Metrics: map[string]float64{"time": 1 + float64(i)/100, "ops_per_sec": 100}},
			benchmark.Record{Name: "bench_b", Commit: commit, Branch: "master", Seq: int64(2*i + 2),
				Metrics: map[string]float64{"time": 3}},
		)
	}
	for i := range 5 {
		out = append(out, benchmark.Record{Name: "bench_a", Commit: "p1", Branch: "pr-1", Seq: int64(20 + i),
			Metrics: map[string]float64{"time": 2 + float64(i)/100, "ops_per_sec": 50}})
	}
	return out
}

// fakeExecCommand runs TestHelperProcess instead of the named binary.
func fakeExecCommand(command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess isn't a real test. It stands in for git in bench tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) >= 3 && args[1] == "git" && args[2] == "rev-parse" {
		fmt.Fprintln(os.Stdout, "0123456789abcdef0123456789abcdef01234567")
		return
	}
	fmt.Fprintf(os.Stderr, "unexpected command: %v", args)
	os.Exit(2)
}
