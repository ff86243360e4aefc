package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/typerel/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Definitions int                        `json:"definitions"`
	Checks      int                        `json:"checks"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate a CUE definitions package",
		Long: `Compile a CUE definitions package and check it for unresolved
references, cyclic definitions without a root, duplicate generic parameters,
duplicate properties, required parameters after optional ones and empty
names.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, defsDir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	module, err := LoadDefs(defsDir)
	if err != nil {
		return failLoad(f, err)
	}
	f.VerboseLog("Compiled %d definition(s) and %d check(s) from %s", len(module.Defs), len(module.Checks), defsDir)

	validationErrors := compiler.Validate(module.Defs)
	if len(validationErrors) > 0 {
		return outputValidationErrors(f, validationErrors)
	}

	result := ValidationResult{
		Valid:       true,
		Definitions: len(module.Defs),
		Checks:      len(module.Checks),
	}
	if f.Format == "json" {
		return f.Success(result)
	}
	return f.Success(fmt.Sprintf("✓ All definitions valid (%d definitions, %d checks)", result.Definitions, result.Checks))
}

// outputValidationErrors outputs validation errors in the configured
// format and returns exit code 1.
func outputValidationErrors(f *OutputFormatter, errs []compiler.ValidationError) error {
	if f.Format == "json" {
		if err := f.Error(errs[0].Code, fmt.Sprintf("%d validation error(s)", len(errs)), errs); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	fmt.Fprintf(f.Writer, "✗ %d validation error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(f.Writer, "  %s\n", e.Error())
	}
	return NewExitError(ExitFailure, "validation failed")
}
