package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/typerel/internal/cyclic"
)

// CyclesOptions holds flags for the cycles command.
type CyclesOptions struct {
	*RootOptions
	defs defsFlags
}

// CyclesOutput is the payload of the cycles command.
type CyclesOutput struct {
	Definitions int                  `json:"definitions"`
	Cycles      []cyclic.CycleWarning `json:"cycles"`
}

func (o CyclesOutput) renderText(w io.Writer) {
	if len(o.Cycles) == 0 {
		fmt.Fprintf(w, "✓ No reference cycles among %d definition(s)\n", o.Definitions)
		return
	}
	for _, c := range o.Cycles {
		fmt.Fprintf(w, "[%s] %s\n", c.Level, strings.Join(c.Path, " → "))
		fmt.Fprintf(w, "  %s\n", c.Message)
	}
}

// NewCyclesCommand creates the cycles command.
func NewCyclesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CyclesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "Report reference cycles among definitions",
		Long: `Report groups of definitions that reference each other.

Cycles are legal. Self-recursive definitions are reported as info and
mutual recursion as warnings, because relations through them compare
against an opaque placeholder after one unfolding.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycles(opts, cmd)
		},
	}

	opts.defs.register(cmd)

	return cmd
}

func runCycles(opts *CyclesOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if opts.defs.dir == "" && opts.defs.db == "" {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, "one of --defs or --db is required", nil)
	}
	defs, err := opts.defs.load(cmd.Context())
	if err != nil {
		return failLoad(f, err)
	}

	return f.Success(CyclesOutput{
		Definitions: len(defs),
		Cycles:      cyclic.Analyze(defs),
	})
}
