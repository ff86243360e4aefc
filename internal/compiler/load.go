package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/typerel/internal/ir"
)

// LoadDir loads the CUE package in dir and compiles it as a module.
func LoadDir(dir string) (*Module, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileModule(value)
}

// LoadFile compiles a single CUE file as a module.
func LoadFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return CompileSource(path, data)
}

// CompileSource compiles CUE source text as a module. filename is used for
// error positions only.
func CompileSource(filename string, src []byte) (*Module, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileModule(value)
}

// Merge combines modules. A definition name may appear only once.
func Merge(modules ...*Module) (*Module, error) {
	out := &Module{Defs: make(map[string]ir.Node)}
	for _, m := range modules {
		for _, name := range m.Names {
			if _, dup := out.Defs[name]; dup {
				return nil, &CompileError{Field: "defs." + name, Message: "duplicate definition"}
			}
			out.Defs[name] = m.Defs[name]
			out.Names = append(out.Names, name)
		}
		out.Checks = append(out.Checks, m.Checks...)
	}
	return out, nil
}
