package record

import (
	"fmt"
	"strings"
)

// Ref is an arena-style reference to a record in another collection.
// It is resolved by lookup, never embedded.
type Ref struct {
	Collection string `json:"collectionId"`
	ID         string `json:"id"`
}

// NewRef creates a reference to the record with the given id.
func NewRef(collection, id string) Ref {
	return Ref{Collection: collection, ID: id}
}

// String returns "Collection/id", the conventional display form.
func (r Ref) String() string {
	return r.Collection + "/" + r.ID
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool {
	return r.Collection == "" && r.ID == ""
}

// Record is a single persisted instance of a collection.
//
// Fields hold the constrained value set described in the package
// documentation. Mutators operate on a copy; the store only persists the
// copy after the authorization rule passed against the original.
type Record struct {
	Collection string
	ID         string
	Fields     map[string]any
}

// New creates a record with an empty field map.
func New(collection, id string) *Record {
	return &Record{
		Collection: collection,
		ID:         id,
		Fields:     make(map[string]any),
	}
}

// Clone returns a deep copy of the record. The store snapshots records
// before applying mutations so a failed write leaves state untouched.
func (r *Record) Clone() *Record {
	return &Record{
		Collection: r.Collection,
		ID:         r.ID,
		Fields:     cloneValue(r.Fields).(map[string]any),
	}
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		// Strings, int64, bool and Ref are value types.
		return val
	}
}

// String returns the named field as a string. Missing or mistyped fields
// yield the zero value; schema validation guards the write path.
func (r *Record) String(field string) string {
	s, _ := r.Fields[field].(string)
	return s
}

// Int returns the named field as an int64.
func (r *Record) Int(field string) int64 {
	n, _ := r.Fields[field].(int64)
	return n
}

// Bool returns the named field as a bool.
func (r *Record) Bool(field string) bool {
	b, _ := r.Fields[field].(bool)
	return b
}

// Ref returns the named field as a Ref and whether it was present.
func (r *Record) Ref(field string) (Ref, bool) {
	ref, ok := r.Fields[field].(Ref)
	return ref, ok
}

// Strings returns the named field as a string slice.
func (r *Record) Strings(field string) []string {
	arr, ok := r.Fields[field].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, elem := range arr {
		if s, ok := elem.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Object returns the named field as a map, or nil.
func (r *Record) Object(field string) map[string]any {
	m, _ := r.Fields[field].(map[string]any)
	return m
}

// Path reads a dotted field path. A path of the form "club.id" on a Ref
// field resolves without a lookup; deeper paths require the caller to
// resolve the Ref first. Returns the value and whether it was found.
func (r *Record) Path(path string) (any, bool) {
	field, rest, nested := strings.Cut(path, ".")
	v, ok := r.Fields[field]
	if !ok {
		return nil, false
	}
	if !nested {
		return v, true
	}
	if ref, ok := v.(Ref); ok && rest == "id" {
		return ref.ID, true
	}
	return nil, false
}

// StringsToAny converts a string slice to the generic array form stored
// in a field map.
func StringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ValidateValue checks that v belongs to the constrained value set.
func ValidateValue(v any) error {
	switch val := v.(type) {
	case string, int64, bool, Ref:
		return nil
	case int:
		return nil
	case []any:
		for i, elem := range val {
			if err := ValidateValue(elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case map[string]any:
		for k, elem := range val {
			if err := ValidateValue(elem); err != nil {
				return fmt.Errorf("[%q]: %w", k, err)
			}
		}
		return nil
	case float32, float64:
		return fmt.Errorf("floats are forbidden in record fields: %v", val)
	default:
		return fmt.Errorf("unsupported field type %T", v)
	}
}
