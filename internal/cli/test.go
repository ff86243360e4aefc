package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/typerel/internal/compiler"
	"github.com/roach88/typerel/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // suite filter (glob pattern)
	Checks string // CUE defs directory whose checks also run
}

// SuiteResult holds the result of a single suite execution.
type SuiteResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "missing"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Suites []SuiteResult `json:"suites"`
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`
	Total  int           `json:"total"`
}

func (r TestResult) renderText(w io.Writer) {
	if r.Total == 0 {
		fmt.Fprintln(w, "No suites found.")
		return
	}
	for _, s := range r.Suites {
		mark := "✓"
		if !s.Pass {
			mark = "✗"
		}
		suffix := ""
		if s.Golden == "updated" {
			suffix = " (golden updated)"
		}
		fmt.Fprintf(w, "%s %s%s\n", mark, s.Name, suffix)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <suite-path>...",
		Short: "Run YAML test suites",
		Long: `Run relation test suites.

Each path is a suite file or a directory searched recursively for .yaml
and .yml files. A suite passes when every case meets its expectation and,
if golden/<name>.golden exists next to the suite file, its trace matches.

Exit codes:
  0 - All suites passed
  1 - One or more suites failed
  2 - Command error (invalid paths, etc.)

Examples:
  typerel test ./testdata/suites
  typerel test ./testdata/suites --filter "basic*"
  typerel test ./testdata/suites --update
  typerel test --checks ./testdata/defs`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter suites by glob pattern")
	cmd.Flags().StringVar(&opts.Checks, "checks", "", "also run the checks declared in a CUE defs directory")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if len(paths) == 0 && opts.Checks == "" {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, "no suite paths given", nil)
	}
	var runOpts []harness.Option
	if opts.Verbose {
		runOpts = append(runOpts, harness.WithLogger(slog.Default()))
	}

	var suiteFiles []string
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("suite path not found: %s", p), nil)
		}
		files, err := findSuiteFiles(p, opts.Filter)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeScanError, err.Error(), nil)
		}
		suiteFiles = append(suiteFiles, files...)
	}

	result := TestResult{Suites: make([]SuiteResult, 0, len(suiteFiles)+1)}
	for _, file := range suiteFiles {
		f.VerboseLog("Running %s", file)
		result.add(runSuite(file, opts, runOpts))
	}
	if opts.Checks != "" {
		module, err := LoadDefs(opts.Checks)
		if err != nil {
			return failLoad(f, err)
		}
		result.add(runChecks(opts.Checks, module, runOpts))
	}

	if result.Failed > 0 {
		if f.Format == "json" {
			if err := f.Error(ErrCodeTestFailed, fmt.Sprintf("%d of %d suite(s) failed", result.Failed, result.Total), result); err != nil {
				return err
			}
		} else {
			result.renderText(f.Writer)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d suite(s) failed", result.Failed))
	}
	return f.Success(result)
}

func (r *TestResult) add(s SuiteResult) {
	r.Suites = append(r.Suites, s)
	r.Total++
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// findSuiteFiles returns path itself if it is a file, or every YAML file
// below it if it is a directory. The filter matches the file name without
// extension.
func findSuiteFiles(path string, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})

	return files, err
}

// runSuite executes a single suite file and applies golden comparison.
func runSuite(file string, opts *TestOptions, runOpts []harness.Option) SuiteResult {
	suite, err := harness.LoadSuite(file)
	if err != nil {
		return SuiteResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load suite: %v", err)},
		}
	}

	result, err := harness.Run(suite, runOpts...)
	if err != nil {
		return SuiteResult{
			Name:   suite.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	out := SuiteResult{Name: suite.Name, Pass: result.Pass, Errors: result.Errors}
	snapshot, err := harness.Snapshot(suite.Name, result)
	if err != nil {
		out.Pass = false
		out.Errors = append(out.Errors, fmt.Sprintf("failed to render trace: %v", err))
		return out
	}

	goldenPath := goldenFilePath(file)
	if opts.Update {
		if err := writeGoldenFile(goldenPath, snapshot); err != nil {
			out.Pass = false
			out.Errors = append(out.Errors, err.Error())
			return out
		}
		out.Golden = "updated"
		return out
	}

	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		// No golden file: expectations alone decide.
		out.Golden = "missing"
		return out
	}
	if err != nil {
		out.Pass = false
		out.Errors = append(out.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return out
	}
	if !bytes.Equal(bytes.TrimSpace(golden), snapshot) {
		out.Pass = false
		out.Errors = append(out.Errors, "trace does not match golden file (run with --update to regenerate)")
		return out
	}
	out.Golden = "match"
	return out
}

// runChecks executes the checks declared alongside a definitions package.
func runChecks(dir string, module *compiler.Module, runOpts []harness.Option) SuiteResult {
	name := "checks:" + filepath.Base(dir)
	result, err := harness.RunChecks(module, runOpts...)
	if err != nil {
		return SuiteResult{Name: name, Errors: []string{fmt.Sprintf("execution failed: %v", err)}}
	}
	return SuiteResult{Name: name, Pass: result.Pass, Errors: result.Errors}
}

// goldenFilePath returns the path to the golden file for a suite file.
func goldenFilePath(suiteFile string) string {
	dir := filepath.Dir(suiteFile)
	base := filepath.Base(suiteFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// writeGoldenFile writes the current trace as the golden file.
func writeGoldenFile(goldenPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
