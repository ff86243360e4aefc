package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/typerel/internal/pattern"
)

// PatternOptions holds flags for the pattern command.
type PatternOptions struct {
	*RootOptions
	Match []string
}

// PatternOutput is the payload of the pattern command.
type PatternOutput struct {
	Pattern string          `json:"pattern"`
	Finite  bool            `json:"finite"`
	Regexp  string          `json:"regexp"`
	Strings []string        `json:"strings,omitempty"`
	Matches map[string]bool `json:"matches,omitempty"`
}

func (o PatternOutput) renderText(w io.Writer) {
	fmt.Fprintf(w, "pattern: %s\n", o.Pattern)
	fmt.Fprintf(w, "regexp:  %s\n", o.Regexp)
	if !o.Finite {
		fmt.Fprintln(w, "finite:  false")
	} else {
		fmt.Fprintf(w, "finite:  true (%d strings)\n", len(o.Strings))
		for _, s := range o.Strings {
			fmt.Fprintf(w, "  %q\n", s)
		}
	}
	for _, s := range sortedMatchKeys(o.Matches) {
		mark := "✗"
		if o.Matches[s] {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s %q\n", mark, s)
	}
}

// NewPatternCommand creates the pattern command.
func NewPatternCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PatternOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pattern <text>",
		Short: "Parse a template pattern and expand it when finite",
		Long: `Parse template pattern text (groups, alternation and escapes), report
whether it is finite, and list the strings it generates. Unbounded patterns
are never enumerated; use --match to test strings against them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPattern(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Match, "match", nil, "test a string against the pattern (repeatable)")

	return cmd
}

func runPattern(opts *PatternOptions, text string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	p, err := pattern.Parse(text)
	if err != nil {
		var pe *pattern.ParseError
		if errors.As(err, &pe) {
			return f.Fail(ExitCommandError, pe.Code(), pe.Message, map[string]any{"offset": pe.Offset})
		}
		return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	out := PatternOutput{
		Pattern: pattern.Format(p),
		Finite:  pattern.IsFinite(p),
		Regexp:  pattern.Regexp(p).String(),
	}
	if out.Finite {
		if out.Strings, err = pattern.Generate(p); err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
	}
	if len(opts.Match) > 0 {
		out.Matches = make(map[string]bool, len(opts.Match))
		for _, s := range opts.Match {
			out.Matches[s] = pattern.Matches(p, s)
		}
	}
	return f.Success(out)
}

func sortedMatchKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
