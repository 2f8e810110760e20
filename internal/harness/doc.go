// Package harness runs YAML conformance scenarios against the record
// store. A scenario is a sequence of signed operations by named actors
// with expected outcomes (ok, denied, validation, conflict, not-found),
// so authorization behavior is reviewable as data instead of test code.
package harness
