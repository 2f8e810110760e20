package authz

import "fmt"

// RuleKind tags one of the closed set of rule variants.
type RuleKind string

const (
	// RuleAnyone admits any authenticated identity.
	RuleAnyone RuleKind = "anyone"

	// RuleOwnerOnly admits only a caller matching one of the rule's owner
	// paths on the record.
	RuleOwnerOnly RuleKind = "ownerOnly"

	// RuleOwnerOrMember admits the club owner, or a caller holding a
	// membership proof for the record's club.
	RuleOwnerOrMember RuleKind = "ownerOrMember"

	// RuleSelfOnly admits only the identity named by the rule's self path.
	RuleSelfOnly RuleKind = "selfOnly"

	// RuleRevocationList admits identities listed in the record's
	// revocation array.
	RuleRevocationList RuleKind = "revocationList"
)

// ValidRuleKinds is the closed set of accepted rule tags.
var ValidRuleKinds = map[RuleKind]bool{
	RuleAnyone:         true,
	RuleOwnerOnly:      true,
	RuleOwnerOrMember:  true,
	RuleSelfOnly:       true,
	RuleRevocationList: true,
}

// Rule is one tagged authorization rule. Which parameter fields apply
// depends on Kind; Validate enforces the pairing.
//
// Identity paths are field names on the record, optionally dotted through
// a reference: "creatorPublicKey" reads a field, "club.creatorPublicKey"
// resolves the club reference and reads the field there, "profile.id"
// reads a reference's id without a lookup.
type Rule struct {
	Kind RuleKind `json:"kind"`

	// Owners lists identity paths for ownerOnly; any match admits the
	// caller. ClubMaterial names both its own creatorPublicKey and the
	// club's, matching either.
	Owners []string `json:"owners,omitempty"`

	// Owner is the owner identity path for ownerOrMember.
	Owner string `json:"owner,omitempty"`

	// Club names the record's club reference field for ownerOrMember;
	// a membership proof must point at the same club.
	Club string `json:"club,omitempty"`

	// Self is the identity path for selfOnly. When used as a constructor
	// rule it is evaluated against the candidate record, binding the
	// record to its creator.
	Self string `json:"self,omitempty"`

	// List names the field holding the identity array for revocationList.
	List string `json:"list,omitempty"`
}

// Validate checks that the rule's parameters match its kind.
func (r Rule) Validate() error {
	switch r.Kind {
	case RuleAnyone:
		return nil
	case RuleOwnerOnly:
		if len(r.Owners) == 0 {
			return fmt.Errorf("ownerOnly rule requires at least one owner path")
		}
	case RuleOwnerOrMember:
		if r.Owner == "" || r.Club == "" {
			return fmt.Errorf("ownerOrMember rule requires owner and club")
		}
	case RuleSelfOnly:
		if r.Self == "" {
			return fmt.Errorf("selfOnly rule requires a self path")
		}
	case RuleRevocationList:
		if r.List == "" {
			return fmt.Errorf("revocationList rule requires a list field")
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	return nil
}
