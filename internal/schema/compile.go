package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/hearthside/hangouts/internal/authz"
)

//go:embed collections.cue
var collectionsCUE string

// compile parses the embedded CUE declarations into collection specs.
// Specs come back in declaration order; bindings are attached by Load.
func compile() ([]*CollectionSpec, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(collectionsCUE, cue.Filename("collections.cue"))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compile collections.cue: %w", err)
	}

	collectionsVal := value.LookupPath(cue.ParsePath("collection"))
	if !collectionsVal.Exists() {
		return nil, fmt.Errorf("collections.cue: no collection declarations found")
	}

	iter, err := collectionsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	var specs []*CollectionSpec
	for iter.Next() {
		spec, err := compileCollection(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("collections.cue: no collections declared")
	}
	return specs, nil
}

func compileCollection(name string, v cue.Value) (*CollectionSpec, error) {
	spec := &CollectionSpec{Name: name}

	fields, err := compileFields(name, v.LookupPath(cue.ParsePath("fields")))
	if err != nil {
		return nil, err
	}
	spec.Fields = fields

	indexesVal := v.LookupPath(cue.ParsePath("indexes"))
	if indexesVal.Exists() {
		if err := indexesVal.Decode(&spec.Indexes); err != nil {
			return nil, &CompileError{Collection: name, Field: "indexes", Message: err.Error()}
		}
		for _, idx := range spec.Indexes {
			if spec.Field(idx) == nil {
				return nil, &CompileError{Collection: name, Field: "indexes", Message: fmt.Sprintf("indexed field %q is not declared", idx)}
			}
		}
	}

	ctorVal := v.LookupPath(cue.ParsePath("constructor"))
	if !ctorVal.Exists() {
		return nil, &CompileError{Collection: name, Field: "constructor", Message: "constructor is required"}
	}
	args, rule, err := compileSignature(name, "constructor", ctorVal)
	if err != nil {
		return nil, err
	}
	spec.Constructor = ConstructorSpec{Args: args, Rule: rule}

	functionsVal := v.LookupPath(cue.ParsePath("functions"))
	if functionsVal.Exists() {
		fnIter, err := functionsVal.Fields()
		if err != nil {
			return nil, &CompileError{Collection: name, Field: "functions", Message: err.Error()}
		}
		for fnIter.Next() {
			fnName := fnIter.Selector().Unquoted()
			args, rule, err := compileSignature(name, fnName, fnIter.Value())
			if err != nil {
				return nil, err
			}
			spec.Functions = append(spec.Functions, FunctionSpec{Name: fnName, Args: args, Rule: rule})
		}
	}

	if deleteVal := v.LookupPath(cue.ParsePath("delete.rule")); deleteVal.Exists() {
		rule, err := compileRule(name, "delete", deleteVal)
		if err != nil {
			return nil, err
		}
		spec.Delete = &DeleteSpec{Rule: rule}
	}

	if readVal := v.LookupPath(cue.ParsePath("read.rule")); readVal.Exists() {
		rule, err := compileRule(name, "read", readVal)
		if err != nil {
			return nil, err
		}
		spec.Read = &ReadSpec{Rule: rule}
	}

	return spec, nil
}

func compileFields(collection string, v cue.Value) ([]FieldSpec, error) {
	if !v.Exists() {
		return nil, &CompileError{Collection: collection, Field: "fields", Message: "fields are required"}
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{Collection: collection, Field: "fields", Message: err.Error()}
	}

	var fields []FieldSpec
	for iter.Next() {
		field := FieldSpec{Name: iter.Selector().Unquoted()}
		if err := iter.Value().Decode(&field); err != nil {
			return nil, &CompileError{Collection: collection, Field: field.Name, Message: err.Error()}
		}
		// Decode overwrites Name when the CUE struct lacks one.
		field.Name = iter.Selector().Unquoted()
		if err := validateFieldType(field.Type); err != nil {
			return nil, &CompileError{Collection: collection, Field: field.Name, Message: err.Error()}
		}
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return nil, &CompileError{Collection: collection, Field: "fields", Message: "at least one field is required"}
	}
	return fields, nil
}

func compileSignature(collection, operation string, v cue.Value) ([]NamedArg, authz.Rule, error) {
	var args []NamedArg
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		if err := argsVal.Decode(&args); err != nil {
			return nil, authz.Rule{}, &CompileError{Collection: collection, Field: operation, Message: fmt.Sprintf("args: %v", err)}
		}
	}
	for i, arg := range args {
		if err := validateFieldType(arg.Type); err != nil {
			return nil, authz.Rule{}, &CompileError{Collection: collection, Field: operation, Message: fmt.Sprintf("args[%d] %q: %v", i, arg.Name, err)}
		}
		// Optional arguments are trailing-only: positional matching
		// cannot skip a hole in the middle.
		if i > 0 && args[i-1].Optional && !arg.Optional {
			return nil, authz.Rule{}, &CompileError{Collection: collection, Field: operation, Message: fmt.Sprintf("required arg %q follows an optional arg", arg.Name)}
		}
	}

	rule, err := compileRule(collection, operation, v.LookupPath(cue.ParsePath("rule")))
	if err != nil {
		return nil, authz.Rule{}, err
	}
	return args, rule, nil
}

func compileRule(collection, operation string, v cue.Value) (authz.Rule, error) {
	if !v.Exists() {
		return authz.Rule{}, &CompileError{Collection: collection, Field: operation, Message: "rule is required"}
	}
	var rule authz.Rule
	if err := v.Decode(&rule); err != nil {
		return authz.Rule{}, &CompileError{Collection: collection, Field: operation, Message: fmt.Sprintf("rule: %v", err)}
	}
	if err := rule.Validate(); err != nil {
		return authz.Rule{}, &CompileError{Collection: collection, Field: operation, Message: fmt.Sprintf("rule: %v", err)}
	}
	return rule, nil
}

func validateFieldType(t string) error {
	switch t {
	case "string", "int", "bool", "identity", "string[]", "identity[]", "map":
		return nil
	}
	if target, ok := strings.CutPrefix(t, "ref:"); ok && target != "" {
		return nil
	}
	return fmt.Errorf("invalid type %q", t)
}
