package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/typerel/internal/engine"
)

// Suite is a conformance suite: definitions plus cases evaluated against
// them.
type Suite struct {
	// Name uniquely identifies this suite and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this suite validates.
	Description string `yaml:"description"`

	// Defs lists CUE files or package directories holding the definitions
	// the cases refer to.
	Defs []string `yaml:"defs,omitempty"`

	// Cases run in order.
	Cases []Case `yaml:"cases"`
}

// Case is a single expectation. Exactly one of the operation fields is set.
type Case struct {
	Name        string           `yaml:"name"`
	Extends     *ExtendsCase     `yaml:"extends,omitempty"`
	Call        *CallCase        `yaml:"call,omitempty"`
	Instantiate *InstantiateCase `yaml:"instantiate,omitempty"`
	Pattern     *PatternCase     `yaml:"pattern,omitempty"`
}

// Kind reports which operation the case exercises, or "" if none or
// several are set.
func (c *Case) Kind() string {
	kind, n := "", 0
	if c.Extends != nil {
		kind, n = KindExtends, n+1
	}
	if c.Call != nil {
		kind, n = KindCall, n+1
	}
	if c.Instantiate != nil {
		kind, n = KindInstantiate, n+1
	}
	if c.Pattern != nil {
		kind, n = KindPattern, n+1
	}
	if n != 1 {
		return ""
	}
	return kind
}

// ExtendsCase asserts the outcome of Extends(Left, Right).
type ExtendsCase struct {
	Left  yaml.Node `yaml:"left"`
	Right yaml.Node `yaml:"right"`

	// Expect is "true", "false" or "ambiguous".
	Expect string `yaml:"expect"`

	// Bindings, when present, must equal the inferred bindings exactly.
	Bindings map[string]yaml.Node `yaml:"bindings,omitempty"`
}

// CallCase asserts the result of applying Target to Args. Either Expect or
// Error is set.
type CallCase struct {
	Target yaml.Node   `yaml:"target"`
	Args   []yaml.Node `yaml:"args"`
	Expect yaml.Node   `yaml:"expect,omitempty"`

	// Error is the expected error code, e.g. CONSTRAINT_VIOLATION.
	Error string `yaml:"error,omitempty"`
}

// InstantiateCase asserts the result of instantiating Node against the
// suite defs. Either Expect or Error is set.
type InstantiateCase struct {
	Node   yaml.Node `yaml:"node"`
	Expect yaml.Node `yaml:"expect,omitempty"`
	Error  string    `yaml:"error,omitempty"`
}

// PatternCase asserts what a template pattern parses and generates to.
type PatternCase struct {
	Text string `yaml:"text"`

	// Expect lists the generated strings in generation order.
	Expect []string `yaml:"expect,omitempty"`

	// Finite, when set, must match the pattern's finiteness.
	Finite *bool `yaml:"finite,omitempty"`

	// Error is the expected parse error code, e.g. MALFORMED_PATTERN.
	Error string `yaml:"error,omitempty"`
}

// LoadSuite reads and parses a suite YAML file. Relative defs paths are
// resolved against the directory holding the file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or is missing required fields.
func LoadSuite(path string) (*Suite, error) {
	return LoadSuiteWithBasePath(path, filepath.Dir(path))
}

// LoadSuiteWithBasePath is like LoadSuite but resolves relative defs paths
// against basePath.
func LoadSuiteWithBasePath(path, basePath string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	suite, err := ParseSuite(data)
	if err != nil {
		return nil, err
	}

	for i, p := range suite.Defs {
		if !filepath.IsAbs(p) && basePath != "" {
			suite.Defs[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateSuite(suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return suite, nil
}

// ParseSuite parses suite YAML without resolving or checking defs paths.
func ParseSuite(data []byte) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "bindngs:"
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateCases(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

// validateSuite checks required fields and that defs paths exist.
func validateSuite(s *Suite) error {
	if err := validateCases(s); err != nil {
		return err
	}
	for _, p := range s.Defs {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("defs file not found: %s", p)
		}
	}
	return nil
}

func validateCases(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		if err := validateCase(c); err != nil {
			return fmt.Errorf("cases[%d] %q: %w", i, c.Name, err)
		}
	}
	return nil
}

func validateCase(c *Case) error {
	switch c.Kind() {
	case KindExtends:
		e := c.Extends
		if missing(e.Left) || missing(e.Right) {
			return fmt.Errorf("extends: left and right are required")
		}
		if _, ok := engine.ParseOutcome(e.Expect); !ok {
			return fmt.Errorf("extends: expect must be true, false or ambiguous, got %q", e.Expect)
		}
	case KindCall:
		if missing(c.Call.Target) {
			return fmt.Errorf("call: target is required")
		}
		return expectOrError(KindCall, c.Call.Expect, c.Call.Error)
	case KindInstantiate:
		if missing(c.Instantiate.Node) {
			return fmt.Errorf("instantiate: node is required")
		}
		return expectOrError(KindInstantiate, c.Instantiate.Expect, c.Instantiate.Error)
	case KindPattern:
		p := c.Pattern
		if p.Error != "" && (p.Expect != nil || p.Finite != nil) {
			return fmt.Errorf("pattern: error excludes expect and finite")
		}
	default:
		return fmt.Errorf("exactly one of extends, call, instantiate or pattern is required")
	}
	return nil
}

func expectOrError(kind string, expect yaml.Node, code string) error {
	if missing(expect) == (code == "") {
		return fmt.Errorf("%s: exactly one of expect or error is required", kind)
	}
	return nil
}

// missing reports whether a yaml.Node field was absent from the document.
func missing(n yaml.Node) bool {
	return n.Kind == 0
}
