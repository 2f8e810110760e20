// Package authz evaluates the authorization rule embedded in every
// mutating operation before the mutation is allowed to apply.
//
// Rules form a small closed set of tagged variants - OwnerOnly,
// OwnerOrMember, SelfOnly, RevocationList, Anyone - evaluated by a single
// dispatcher. The free-form conditionals of the original schema DSL are
// deliberately not reproduced; each variant is unit-testable in
// isolation.
//
// Evaluation is a pure function of the caller identity and the record
// state BEFORE the mutation, plus any supplied proof records. Evaluating
// against pre-mutation state prevents a payload from granting itself
// permission, e.g. by changing creatorPublicKey and passing the owner
// check against the new value. No rule ever allows a third party to
// mutate on someone else's behalf unless that party's key appears
// explicitly in an ownership or revocation list on the record.
package authz
