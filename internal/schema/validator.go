// Package schema validates raw tool output and persisted snapshots against
// embedded JSON Schemas before they are decoded into typed reports.
package schema

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ludo-technologies/jsboard/domain"
)

// snapshotResource is the resource name of the snapshot schema
const snapshotResource = "snapshot.json"

var sources = map[string]string{
	string(domain.ToolKindLint):            LintSchema,
	string(domain.ToolKindDependencyGraph): DepsSchema,
	string(domain.ToolKindDeadCode):        DeadCodeSchema,
	string(domain.ToolKindLineCount):       LineCountSchema,
	"snapshot":                             SnapshotSchema,
}

// Validator holds the compiled schemas. It is safe for concurrent use.
type Validator struct {
	compiled map[string]*jsonschema.Schema
}

// NewValidator compiles every embedded schema
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()

	for name, src := range sources {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s schema: %w", name, err)
		}
		if err := compiler.AddResource(resource(name), doc); err != nil {
			return nil, fmt.Errorf("failed to add %s schema: %w", name, err)
		}
	}

	v := &Validator{compiled: make(map[string]*jsonschema.Schema, len(sources))}
	for name := range sources {
		sch, err := compiler.Compile(resource(name))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
		}
		v.compiled[name] = sch
	}
	return v, nil
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
	defaultErr       error
)

// Default returns a process-wide validator, compiled on first use
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = NewValidator()
	})
	return defaultValidator, defaultErr
}

// ValidateTool checks raw output of the given tool kind
func (v *Validator) ValidateTool(kind domain.ToolKind, data []byte) error {
	sch, ok := v.compiled[string(kind)]
	if !ok {
		return domain.NewInvalidInputError(fmt.Sprintf("no schema for tool kind %q", kind), nil)
	}
	return validate(sch, data)
}

// ValidateSnapshot checks a serialized snapshot
func (v *Validator) ValidateSnapshot(data []byte) error {
	return validate(v.compiled["snapshot"], data)
}

func validate(sch *jsonschema.Schema, data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("schema violation: %w", err)
	}
	return nil
}

func resource(name string) string {
	if name == "snapshot" {
		return snapshotResource
	}
	return name + ".schema.json"
}
