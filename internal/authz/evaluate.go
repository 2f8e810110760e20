package authz

import (
	"fmt"
	"strings"

	"github.com/hearthside/hangouts/internal/identity"
	"github.com/hearthside/hangouts/internal/record"
)

// Resolver looks up a referenced record. A (nil, nil) return means the
// record does not exist; evaluation treats a dangling reference as "no
// value" rather than an error, so a deleted club cannot be used to
// bypass a fallback owner path.
type Resolver func(ref record.Ref) (*record.Record, error)

// Decision is the outcome of evaluating a rule.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denying decision with a reason surfaced verbatim.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Evaluator dispatches the closed set of rule variants.
type Evaluator struct {
	resolve Resolver
}

// NewEvaluator creates an evaluator using the given reference resolver.
func NewEvaluator(resolve Resolver) *Evaluator {
	return &Evaluator{resolve: resolve}
}

// proofMemberField and proofClubField are the fields a membership proof
// is checked against. A proof is a ClubMembership record supplied
// alongside the call.
const (
	proofMemberField = "memberPublicKey"
	proofClubField   = "club"
)

// Can evaluates rule for caller against the record's pre-mutation state
// (or the candidate record, for constructors) plus any supplied proofs.
//
// The caller identity must come from the signed challenge for the call,
// never from the payload.
func (e *Evaluator) Can(rule Rule, caller string, state *record.Record, proofs []*record.Record) (Decision, error) {
	if caller == "" {
		return Deny("no authenticated identity"), nil
	}

	switch rule.Kind {
	case RuleAnyone:
		return Allow(), nil

	case RuleOwnerOnly:
		for _, path := range rule.Owners {
			owner, err := e.identityAt(state, path)
			if err != nil {
				return Decision{}, err
			}
			if owner != "" && identity.SameAddress(owner, caller) {
				return Allow(), nil
			}
		}
		return Deny(fmt.Sprintf("only the owner may call this (owner paths: %s)", strings.Join(rule.Owners, ", "))), nil

	case RuleOwnerOrMember:
		// Posts additionally bind the record to its author.
		if rule.Self != "" {
			self, err := e.identityAt(state, rule.Self)
			if err != nil {
				return Decision{}, err
			}
			if self == "" || !identity.SameAddress(self, caller) {
				return Deny("caller does not match the record's creator"), nil
			}
		}
		owner, err := e.identityAt(state, rule.Owner)
		if err != nil {
			return Decision{}, err
		}
		if owner != "" && identity.SameAddress(owner, caller) {
			return Allow(), nil
		}
		clubRef, ok := state.Ref(rule.Club)
		if !ok {
			return Deny("record has no club reference"), nil
		}
		for _, proof := range proofs {
			if proof == nil {
				continue
			}
			if !identity.SameAddress(proof.String(proofMemberField), caller) {
				continue
			}
			proofClub, ok := proof.Ref(proofClubField)
			if !ok || proofClub.ID != clubRef.ID {
				continue
			}
			return Allow(), nil
		}
		return Deny("caller is neither the club creator nor a proven member of this club"), nil

	case RuleSelfOnly:
		self, err := e.identityAt(state, rule.Self)
		if err != nil {
			return Decision{}, err
		}
		if self != "" && identity.SameAddress(self, caller) {
			return Allow(), nil
		}
		return Deny("only the named identity may call this"), nil

	case RuleRevocationList:
		list := state.Strings(rule.List)
		for _, entry := range list {
			if identity.SameAddress(entry, caller) {
				return Allow(), nil
			}
		}
		return Deny("caller is not in the revocation list"), nil

	default:
		return Decision{}, fmt.Errorf("unknown rule kind %q", rule.Kind)
	}
}

// identityAt reads an identity string at a possibly-dotted path.
// Returns "" when the path has no value (missing field, dangling
// reference), which never matches any caller.
func (e *Evaluator) identityAt(rec *record.Record, path string) (string, error) {
	field, rest, nested := strings.Cut(path, ".")
	if !nested {
		return rec.String(field), nil
	}

	ref, ok := rec.Ref(field)
	if !ok {
		return "", nil
	}
	if rest == "id" {
		return ref.ID, nil
	}
	if e.resolve == nil {
		return "", fmt.Errorf("path %q requires a resolver", path)
	}
	resolved, err := e.resolve(ref)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", ref, err)
	}
	if resolved == nil {
		return "", nil
	}
	return resolved.String(rest), nil
}
