package schema

import (
	"fmt"
	"strings"

	"github.com/hearthside/hangouts/internal/record"
)

// CoerceArgs validates positional arguments against their declared
// types and returns a normalized slice of length len(decl): every slot
// either holds a value of the declared Go shape or nil for an omitted
// trailing optional.
//
// Arity and typing failures are ValidationErrors, raised before any
// authorization work happens.
func CoerceArgs(collection string, decl []NamedArg, supplied []any) ([]any, error) {
	required := RequiredArgs(decl)
	if len(supplied) < required {
		return nil, &ValidationError{
			Collection: collection,
			Message:    fmt.Sprintf("expected at least %d arguments, got %d", required, len(supplied)),
		}
	}
	if len(supplied) > len(decl) {
		return nil, &ValidationError{
			Collection: collection,
			Message:    fmt.Sprintf("expected at most %d arguments, got %d", len(decl), len(supplied)),
		}
	}

	out := make([]any, len(decl))
	for i, arg := range decl {
		if i >= len(supplied) || supplied[i] == nil {
			if !arg.Optional {
				return nil, &ValidationError{Collection: collection, Arg: arg.Name, Message: "required argument is missing"}
			}
			continue
		}
		coerced, err := coerceArg(collection, arg, supplied[i])
		if err != nil {
			return nil, err
		}
		out[i] = coerced
	}
	return out, nil
}

func coerceArg(collection string, decl NamedArg, v any) (any, error) {
	fail := func(msg string) error {
		return &ValidationError{Collection: collection, Arg: decl.Name, Message: msg}
	}

	switch decl.Type {
	case "string":
		s, ok := v.(string)
		if !ok {
			return nil, fail(fmt.Sprintf("expected string, got %T", v))
		}
		if s == "" && !decl.Optional && identifierArg(decl.Name) {
			return nil, fail("must not be blank")
		}
		return s, nil

	case "int":
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		default:
			return nil, fail(fmt.Sprintf("expected int, got %T", v))
		}

	case "bool":
		b, ok := v.(bool)
		if !ok {
			return nil, fail(fmt.Sprintf("expected bool, got %T", v))
		}
		return b, nil

	case "string[]", "identity[]":
		switch arr := v.(type) {
		case []string:
			return record.StringsToAny(arr), nil
		case []any:
			for i, elem := range arr {
				if _, ok := elem.(string); !ok {
					return nil, fail(fmt.Sprintf("element %d: expected string, got %T", i, elem))
				}
			}
			return arr, nil
		default:
			return nil, fail(fmt.Sprintf("expected string array, got %T", v))
		}

	default:
		if target, ok := strings.CutPrefix(decl.Type, "ref:"); ok {
			ref, isRef := v.(record.Ref)
			if !isRef {
				return nil, fail(fmt.Sprintf("expected %s reference, got %T", target, v))
			}
			if ref.Collection != target {
				return nil, fail(fmt.Sprintf("expected %s reference, got %s", target, ref.Collection))
			}
			if ref.ID == "" {
				return nil, fail("reference id must not be blank")
			}
			return ref, nil
		}
		return nil, fail(fmt.Sprintf("unsupported argument type %q", decl.Type))
	}
}

// identifierArg reports whether a blank value for this argument would
// corrupt an id or a composite-id component.
func identifierArg(name string) bool {
	return name == "id" || name == "publicAddress" || strings.HasPrefix(name, "id")
}
