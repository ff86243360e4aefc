package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/typerel/internal/generic"
	"github.com/roach88/typerel/internal/ir"
)

// InstantiateOptions holds flags for the instantiate command.
type InstantiateOptions struct {
	*RootOptions
	defs defsFlags
}

// InstantiateOutput is the payload of the instantiate command.
type InstantiateOutput struct {
	Node string `json:"node"`
	Wire any    `json:"wire"`
}

func (o InstantiateOutput) renderText(w io.Writer) {
	fmt.Fprintln(w, o.Node)
}

// NewInstantiateCommand creates the instantiate command.
func NewInstantiateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InstantiateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "instantiate <node>",
		Short: "Evaluate generic calls, mapped types, keyof and index access",
		Long: `Evaluate every call, mapped type, keyof and indexed access in a descriptor
against the definitions in --defs or --db.

Operations whose operands are not yet concrete are left in place; run with
--verbose to see why each one was deferred. A call whose argument violates
its parameter constraint fails with CONSTRAINT_VIOLATION.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstantiate(opts, args[0], cmd)
		},
	}

	opts.defs.register(cmd)

	return cmd
}

func runInstantiate(opts *InstantiateOptions, arg string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	node, err := parseDescriptor(f, "node", arg)
	if err != nil {
		return err
	}
	defs, err := opts.defs.load(cmd.Context())
	if err != nil {
		return failLoad(f, err)
	}

	inst := generic.New(generic.WithLogger(slog.Default()))
	out, err := inst.Instantiate(defs, node)
	if err != nil {
		var ce *generic.ConstraintError
		if errors.As(err, &ce) {
			details := map[string]any{"param": ce.Param}
			if ce.Arg != nil {
				details["arg"] = ir.Format(ce.Arg)
			}
			if ce.Constraint != nil {
				details["constraint"] = ir.Format(ce.Constraint)
			}
			return f.Fail(ExitFailure, string(ce.Code), ce.Message, details)
		}
		return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	wire, err := ir.ToWire(out)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return f.Success(InstantiateOutput{Node: ir.Format(out), Wire: wire})
}
