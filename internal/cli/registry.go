package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
	"github.com/roach88/typerel/internal/store"
)

// RegistryOptions holds flags shared by registry subcommands.
type RegistryOptions struct {
	*RootOptions
	DB string
}

// DefinitionOutput is one registry row.
type DefinitionOutput struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Seq  int64  `json:"seq"`
}

// RegistryListOutput is the payload of registry put and registry list.
type RegistryListOutput struct {
	Definitions []DefinitionOutput `json:"definitions"`
}

func (o RegistryListOutput) renderText(w io.Writer) {
	if len(o.Definitions) == 0 {
		fmt.Fprintln(w, "No definitions.")
		return
	}
	for _, d := range o.Definitions {
		fmt.Fprintf(w, "%6d  %s  %s\n", d.Seq, d.Hash[:12], d.Name)
	}
}

// CheckOutput is one relation-log entry.
type CheckOutput struct {
	ID       string            `json:"id"`
	Seq      int64             `json:"seq"`
	Left     string            `json:"left"`
	Right    string            `json:"right"`
	Outcome  string            `json:"outcome"`
	Bindings map[string]string `json:"bindings,omitempty"`
}

// RegistryChecksOutput is the payload of registry checks.
type RegistryChecksOutput struct {
	Checks []CheckOutput `json:"checks"`
}

func (o RegistryChecksOutput) renderText(w io.Writer) {
	if len(o.Checks) == 0 {
		fmt.Fprintln(w, "No checks recorded.")
		return
	}
	for _, c := range o.Checks {
		fmt.Fprintf(w, "%6d  %-9s  %s extends %s\n", c.Seq, c.Outcome, c.Left, c.Right)
		for _, name := range sortedKeys(c.Bindings) {
			fmt.Fprintf(w, "          %s = %s\n", name, c.Bindings[name])
		}
	}
}

// NewRegistryCommand creates the registry command group.
func NewRegistryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegistryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the definitions registry and relation log",
		Long: `Manage a SQLite registry of named definitions and the log of
recorded extends checks.`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "registry database path (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newRegistryPutCommand(opts))
	cmd.AddCommand(newRegistryListCommand(opts))
	cmd.AddCommand(newRegistryChecksCommand(opts))

	return cmd
}

func newRegistryPutCommand(opts *RegistryOptions) *cobra.Command {
	var defsDir string

	cmd := &cobra.Command{
		Use:           "put",
		Short:         "Store every definition of a CUE package",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryPut(opts, defsDir, cmd)
		},
	}
	cmd.Flags().StringVar(&defsDir, "defs", "", "CUE package directory holding defs (required)")
	_ = cmd.MarkFlagRequired("defs")

	return cmd
}

func runRegistryPut(opts *RegistryOptions, defsDir string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	module, err := LoadDefs(defsDir)
	if err != nil {
		return failLoad(f, err)
	}
	st, err := openStore(opts.DB)
	if err != nil {
		return failLoad(f, err)
	}
	defer st.Close()

	for _, name := range module.Names {
		hash, err := st.PutDefinition(ctx, name, module.Defs[name])
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		f.VerboseLog("Stored %s (%s)", name, hash)
	}

	defs, err := st.ListDefinitions(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	return f.Success(RegistryListOutput{Definitions: definitionOutputs(defs)})
}

func newRegistryListCommand(opts *RegistryOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored definitions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			st, err := openStore(opts.DB)
			if err != nil {
				return failLoad(f, err)
			}
			defer st.Close()

			defs, err := st.ListDefinitions(cmd.Context())
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
			}
			return f.Success(RegistryListOutput{Definitions: definitionOutputs(defs)})
		},
	}
}

func newRegistryChecksCommand(opts *RegistryOptions) *cobra.Command {
	var outcome string

	cmd := &cobra.Command{
		Use:           "checks",
		Short:         "List recorded extends checks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryChecks(opts, outcome, cmd)
		},
	}
	cmd.Flags().StringVar(&outcome, "outcome", "", "only show checks with this outcome (true|false|ambiguous)")

	return cmd
}

func runRegistryChecks(opts *RegistryOptions, outcome string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	var filter engine.Outcome
	if outcome != "" {
		o, ok := engine.ParseOutcome(outcome)
		if !ok {
			return f.Fail(ExitCommandError, ErrCodeBadArgument, fmt.Sprintf("invalid outcome %q: must be true, false or ambiguous", outcome), nil)
		}
		filter = o
	}

	st, err := openStore(opts.DB)
	if err != nil {
		return failLoad(f, err)
	}
	defer st.Close()

	var recs []store.CheckRecord
	if outcome != "" {
		recs, err = st.ChecksWithOutcome(ctx, filter)
	} else {
		recs, err = st.Checks(ctx)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	out := RegistryChecksOutput{Checks: make([]CheckOutput, len(recs))}
	for i, rec := range recs {
		out.Checks[i] = CheckOutput{
			ID:       rec.ID,
			Seq:      rec.Seq,
			Left:     ir.Format(rec.Left),
			Right:    ir.Format(rec.Right),
			Outcome:  rec.Outcome.String(),
			Bindings: formatBindings(rec.Bindings),
		}
	}
	return f.Success(out)
}

func definitionOutputs(defs []store.Definition) []DefinitionOutput {
	out := make([]DefinitionOutput, len(defs))
	for i, d := range defs {
		out[i] = DefinitionOutput{Name: d.Name, Hash: d.Hash, Seq: d.Seq}
	}
	return out
}
