// Package schema is the in-memory registry describing every collection:
// fields, indexed fields, constructor and function signatures, and the
// authorization rule guarding each mutating operation.
//
// Collections are declared in an embedded CUE file and compiled into
// specs at startup. The CUE side carries everything declarative - field
// types, positional argument orders, rule tags. The Go side binds the
// constructor and mutator bodies, and Load rejects a registry where the
// two disagree (a declared function with no body, or a body with no
// declaration).
//
// Positional argument order is part of the wire contract: calls are
// matched by position, not name, so the orders in collections.cue must
// never be reordered.
package schema
