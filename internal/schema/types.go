package schema

import (
	"github.com/hearthside/hangouts/internal/authz"
	"github.com/hearthside/hangouts/internal/record"
)

// Collection names. Composite record ids reference these, so they are
// part of the wire contract.
const (
	CollectionUserProfile    = "UserProfile"
	CollectionClub           = "Club"
	CollectionClubMembership = "ClubMembership"
	CollectionSourceMaterial = "SourceMaterial"
	CollectionClubMaterial   = "ClubMaterial"
	CollectionClubPost       = "ClubPost"
	CollectionRSVP           = "RSVP"
)

// FieldSpec describes one typed field of a collection.
//
// Types: "string", "int", "bool", "identity", "string[]", "identity[]",
// "map" (identity-keyed), and "ref:<Collection>".
type FieldSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// NamedArg is one positional argument of a constructor or function.
type NamedArg struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// CallContext carries the authenticated caller identity and a reference
// resolver into constructor and mutator bodies. The caller always comes
// from the signed challenge, never from arguments.
type CallContext struct {
	Caller  string
	Resolve authz.Resolver
}

// Builder assembles a candidate record from positional constructor
// arguments. The candidate is evaluated against the constructor rule
// before it is persisted.
type Builder func(ctx CallContext, args []any) (*record.Record, error)

// Mutator applies a named function to a copy of the record. The store
// only persists the copy after the function's rule passed against the
// original state.
type Mutator func(ctx CallContext, rec *record.Record, args []any) error

// ConstructorSpec describes a collection's constructor.
type ConstructorSpec struct {
	Args  []NamedArg `json:"args"`
	Rule  authz.Rule `json:"rule"`
	Build Builder    `json:"-"`
}

// FunctionSpec describes one named mutating function.
type FunctionSpec struct {
	Name  string     `json:"name"`
	Args  []NamedArg `json:"args"`
	Rule  authz.Rule `json:"rule"`
	Apply Mutator    `json:"-"`
}

// DeleteSpec gates the delete operation. Collections without one cannot
// be deleted at all.
type DeleteSpec struct {
	Rule authz.Rule `json:"rule"`
}

// ReadSpec gates point reads and queries. Most collections are public;
// RSVPs are readable only by their own profile.
type ReadSpec struct {
	Rule authz.Rule `json:"rule"`
}

// CollectionSpec is the compiled description of one collection.
type CollectionSpec struct {
	Name        string          `json:"name"`
	Fields      []FieldSpec     `json:"fields"`
	Indexes     []string        `json:"indexes,omitempty"`
	Constructor ConstructorSpec `json:"constructor"`
	Functions   []FunctionSpec  `json:"functions,omitempty"`
	Delete      *DeleteSpec     `json:"delete,omitempty"`
	Read        *ReadSpec       `json:"read,omitempty"`
}

// Function returns the named function spec, or nil.
func (c *CollectionSpec) Function(name string) *FunctionSpec {
	for i := range c.Functions {
		if c.Functions[i].Name == name {
			return &c.Functions[i]
		}
	}
	return nil
}

// Field returns the named field spec, or nil.
func (c *CollectionSpec) Field(name string) *FieldSpec {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// Indexed reports whether the field supports query(field, op, value).
func (c *CollectionSpec) Indexed(field string) bool {
	for _, idx := range c.Indexes {
		if idx == field {
			return true
		}
	}
	return false
}

// RequiredArgs returns how many leading constructor/function arguments
// are mandatory. Optional arguments are always trailing.
func RequiredArgs(args []NamedArg) int {
	n := len(args)
	for n > 0 && args[n-1].Optional {
		n--
	}
	return n
}
