package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/typerel/internal/compiler"
	"github.com/roach88/typerel/internal/ir"
	"github.com/roach88/typerel/internal/store"
)

// LoadError represents an error that occurred while loading definitions.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands. Definition
// validation codes (E1xx) come from the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeInvalidDesc = "E006" // Descriptor does not compile
	ErrCodeStore       = "E007" // Registry open/read/write failed
	ErrCodeBadArgument = "E008" // Descriptor argument does not parse
	ErrCodeTestFailed  = "E009" // One or more suites failed
)

// LoadDefs loads and compiles the CUE definitions package in dir.
func LoadDefs(dir string) (*compiler.Module, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("defs directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing defs directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	module, err := compiler.LoadDir(dir)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return module, nil
}

// FindCUEFiles returns the .cue files directly inside dir. Subdirectories
// are separate CUE packages and are not loaded.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with
// position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		msg := compileErr.Message
		if compileErr.Field != "" {
			msg = compileErr.Field + ": " + msg
		}
		return &LoadError{
			Code:    ErrCodeInvalidDesc,
			Message: msg,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// defsFlags selects where named definitions come from: a CUE package
// directory, a registry database, or both. Directory definitions shadow
// registry definitions of the same name.
type defsFlags struct {
	dir string
	db  string
}

func (d *defsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.dir, "defs", "", "CUE package directory holding defs")
	cmd.Flags().StringVar(&d.db, "db", "", "registry database path")
}

// load returns the merged definitions. Failures are *LoadError.
func (d *defsFlags) load(ctx context.Context) (map[string]ir.Node, error) {
	defs := map[string]ir.Node{}
	if d.db != "" {
		st, err := openStore(d.db)
		if err != nil {
			return nil, err
		}
		stored, err := st.Definitions(ctx)
		st.Close()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeStore, Message: err.Error()}
		}
		for name, n := range stored {
			defs[name] = n
		}
	}
	if d.dir != "" {
		module, err := LoadDefs(d.dir)
		if err != nil {
			return nil, err
		}
		for name, n := range module.Defs {
			defs[name] = n
		}
	}
	return defs, nil
}

func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStore, Message: err.Error()}
	}
	return st, nil
}

// failLoad reports a load error and returns the command error.
func failLoad(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		details := any(nil)
		if loadErr.Pos.IsValid() {
			details = map[string]any{
				"file":   loadErr.Pos.Filename(),
				"line":   loadErr.Pos.Line(),
				"column": loadErr.Pos.Column(),
			}
		}
		return f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, details)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

// parseDescriptor decodes a command-line descriptor argument.
func parseDescriptor(f *OutputFormatter, what, text string) (ir.Node, error) {
	n, err := compiler.ParseArg(text)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeBadArgument, fmt.Sprintf("%s: %v", what, err), nil)
	}
	return n, nil
}
