package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/typerel/internal/compiler"
	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
)

// ExtendsOptions holds flags for the extends command.
type ExtendsOptions struct {
	*RootOptions
	defs   defsFlags
	Record bool
}

// ExtendsOutput is the payload of the extends command.
type ExtendsOutput struct {
	Left     string            `json:"left"`
	Right    string            `json:"right"`
	Outcome  string            `json:"outcome"`
	Bindings map[string]string `json:"bindings,omitempty"`
	Record   *RecordOutput     `json:"record,omitempty"`
}

// RecordOutput describes the relation-log entry of a recorded check.
type RecordOutput struct {
	ID       string `json:"id"`
	Seq      int64  `json:"seq"`
	Inserted bool   `json:"inserted"`
}

func (o ExtendsOutput) renderText(w io.Writer) {
	fmt.Fprintln(w, o.Outcome)
	for _, name := range sortedKeys(o.Bindings) {
		fmt.Fprintf(w, "  %s = %s\n", name, o.Bindings[name])
	}
	if o.Record != nil {
		state := "recorded"
		if !o.Record.Inserted {
			state = "already recorded"
		}
		fmt.Fprintf(w, "%s as %s (seq %d)\n", state, o.Record.ID, o.Record.Seq)
	}
}

// NewExtendsCommand creates the extends command.
func NewExtendsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExtendsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "extends <left> <right>",
		Short: "Decide whether left structurally extends right",
		Long: `Decide whether the left descriptor is assignable to the right one.

Descriptors are JSON in the kind-tagged wire shape, a keyword such as
"string", or "#Name" for a definition from --defs or --db. Inference
variables on the right are reported as bindings when the outcome is true.

With --record the outcome is appended to the relation log in --db.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtends(opts, args[0], args[1], cmd)
		},
	}

	opts.defs.register(cmd)
	cmd.Flags().BoolVar(&opts.Record, "record", false, "append the outcome to the relation log (requires --db)")

	return cmd
}

func runExtends(opts *ExtendsOptions, leftArg, rightArg string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	if opts.Record && opts.defs.db == "" {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, "--record requires --db", nil)
	}

	left, err := parseDescriptor(f, "left", leftArg)
	if err != nil {
		return err
	}
	right, err := parseDescriptor(f, "right", rightArg)
	if err != nil {
		return err
	}

	defs, err := opts.defs.load(ctx)
	if err != nil {
		return failLoad(f, err)
	}
	f.VerboseLog("Loaded %d definition(s)", len(defs))
	warnUnresolved(f, defs, "left", left)
	warnUnresolved(f, defs, "right", right)

	r := engine.ExtendsWith(defs, left, right, nil)

	out := ExtendsOutput{
		Left:     ir.Format(left),
		Right:    ir.Format(right),
		Outcome:  r.Outcome.String(),
		Bindings: formatBindings(r.Bindings),
	}

	if opts.Record {
		st, err := openStore(opts.defs.db)
		if err != nil {
			return failLoad(f, err)
		}
		defer st.Close()
		rec, inserted, err := st.RecordCheck(ctx, defs, left, right, r)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		out.Record = &RecordOutput{ID: rec.ID, Seq: rec.Seq, Inserted: inserted}
	}

	return f.Success(out)
}

// warnUnresolved reports references that no definition binds. They are
// legal and relate as opaque names.
func warnUnresolved(f *OutputFormatter, defs map[string]ir.Node, what string, n ir.Node) {
	for _, e := range compiler.ValidateNode(defs, n) {
		f.VerboseLog("warning: %s: %s", what, e.Error())
	}
}

func formatBindings(b engine.Bindings) map[string]string {
	if len(b) == 0 {
		return nil
	}
	out := make(map[string]string, len(b))
	for name, n := range b {
		out[name] = ir.Format(n)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
