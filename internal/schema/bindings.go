package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hearthside/hangouts/internal/identity"
	"github.com/hearthside/hangouts/internal/record"
)

// binding carries the Go bodies for one collection's operations.
// Load attaches these to the compiled specs and fails when the CUE
// declarations and the bindings disagree.
type binding struct {
	build Builder
	apply map[string]Mutator
}

var bindings = map[string]binding{
	CollectionUserProfile: {
		build: buildUserProfile,
		apply: map[string]Mutator{"updateProfile": applyUpdateProfile},
	},
	CollectionClub: {
		build: buildClub,
		apply: map[string]Mutator{
			"updateClubInfo":     applyUpdateClubInfo,
			"setCurrentMaterial": applySetCurrentMaterial,
		},
	},
	CollectionClubMembership: {
		build: buildClubMembership,
		apply: map[string]Mutator{},
	},
	CollectionSourceMaterial: {
		build: buildSourceMaterial,
		apply: map[string]Mutator{"rate": applyRate},
	},
	CollectionClubMaterial: {
		build: buildClubMaterial,
		apply: map[string]Mutator{"setMilestones": applySetMilestones},
	},
	CollectionClubPost: {
		build: buildClubPost,
		apply: map[string]Mutator{"react": applyReact},
	},
	CollectionRSVP: {
		build: buildRSVP,
		apply: map[string]Mutator{},
	},
}

func buildUserProfile(ctx CallContext, args []any) (*record.Record, error) {
	address, err := identity.NormalizeAddress(args[0].(string))
	if err != nil {
		return nil, &ValidationError{Collection: CollectionUserProfile, Arg: "publicAddress", Message: err.Error()}
	}
	rec := record.New(CollectionUserProfile, address)
	rec.Fields["id"] = address
	rec.Fields["publicKey"] = ctx.Caller
	rec.Fields["publicAddress"] = ctx.Caller
	rec.Fields["displayName"] = args[1]
	rec.Fields["bio"] = args[2]
	rec.Fields["avatarURI"] = args[3]
	return rec, nil
}

func applyUpdateProfile(ctx CallContext, rec *record.Record, args []any) error {
	rec.Fields["displayName"] = args[0]
	rec.Fields["bio"] = args[1]
	rec.Fields["avatarURI"] = args[2]
	return nil
}

func buildClub(ctx CallContext, args []any) (*record.Record, error) {
	id := args[0].(string)
	rec := record.New(CollectionClub, id)
	rec.Fields["id"] = id
	rec.Fields["creatorPublicKey"] = ctx.Caller
	rec.Fields["name"] = args[1]
	rec.Fields["description"] = args[2]
	rec.Fields["genres"] = args[3]
	rec.Fields["creator"] = args[4]
	rec.Fields["coverURI"] = args[5]
	rec.Fields["openToNewMembers"] = args[6]
	rec.Fields["currentClubMaterial"] = ""
	return rec, nil
}

func applyUpdateClubInfo(ctx CallContext, rec *record.Record, args []any) error {
	rec.Fields["name"] = args[0]
	rec.Fields["description"] = args[1]
	rec.Fields["genres"] = args[2]
	rec.Fields["coverURI"] = args[3]
	rec.Fields["openToNewMembers"] = args[4]
	return nil
}

func applySetCurrentMaterial(ctx CallContext, rec *record.Record, args []any) error {
	rec.Fields["currentClubMaterial"] = args[0]
	return nil
}

func buildClubMembership(ctx CallContext, args []any) (*record.Record, error) {
	id := args[0].(string)
	clubRef := args[1].(record.Ref)
	memberRef := args[2].(record.Ref)

	// The composite id carries the uniqueness invariant: exactly one
	// membership per (member, club) pair.
	if expected := memberRef.ID + "/" + clubRef.ID; id != expected {
		return nil, &ValidationError{
			Collection: CollectionClubMembership,
			Arg:        "id",
			Message:    fmt.Sprintf("must be %q (memberAddress/clubId)", expected),
		}
	}

	club, err := ctx.Resolve(clubRef)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, &ValidationError{Collection: CollectionClubMembership, Arg: "club", Message: "referenced club does not exist"}
	}

	rec := record.New(CollectionClubMembership, id)
	rec.Fields["id"] = id
	rec.Fields["club"] = clubRef
	rec.Fields["member"] = memberRef
	rec.Fields["memberPublicKey"] = ctx.Caller
	rec.Fields["canRevoke"] = []any{ctx.Caller, club.String("creatorPublicKey")}
	return rec, nil
}

func buildSourceMaterial(ctx CallContext, args []any) (*record.Record, error) {
	id := args[0].(string)
	rec := record.New(CollectionSourceMaterial, id)
	rec.Fields["id"] = id
	rec.Fields["title"] = args[1]
	rec.Fields["description"] = args[2]
	rec.Fields["authors"] = args[3]
	rec.Fields["format"] = args[4]
	rec.Fields["type"] = args[5]
	rec.Fields["ratings"] = map[string]any{}
	setOptional(rec, "thumbnailURI", args[6])
	setOptional(rec, "language", args[7])
	setOptional(rec, "genres", args[8])
	setOptional(rec, "yearPublished", args[9])
	setOptional(rec, "maturityRating", args[10])
	return rec, nil
}

func applyRate(ctx CallContext, rec *record.Record, args []any) error {
	ratings := rec.Object("ratings")
	if ratings == nil {
		ratings = map[string]any{}
	}
	ratings[ctx.Caller] = args[0]
	rec.Fields["ratings"] = ratings
	return nil
}

func buildClubMaterial(ctx CallContext, args []any) (*record.Record, error) {
	id := args[0].(string)
	materialRef := args[1].(record.Ref)
	clubRef := args[2].(record.Ref)

	if expected := clubRef.ID + "/" + materialRef.ID; id != expected {
		return nil, &ValidationError{
			Collection: CollectionClubMaterial,
			Arg:        "id",
			Message:    fmt.Sprintf("must be %q (clubId/sourceMaterialId)", expected),
		}
	}

	rec := record.New(CollectionClubMaterial, id)
	rec.Fields["id"] = id
	rec.Fields["creatorPublicKey"] = ctx.Caller
	rec.Fields["material"] = materialRef
	rec.Fields["club"] = clubRef
	rec.Fields["milestones"] = []any{}
	rec.Fields["createdAt"] = args[3]
	return rec, nil
}

func applySetMilestones(ctx CallContext, rec *record.Record, args []any) error {
	milestones := args[0].([]any)
	encoded := make([]string, len(milestones))
	for i, elem := range milestones {
		encoded[i] = elem.(string)
	}
	// Each entry must parse as a milestone object before the whole array
	// is swapped in.
	if _, err := record.DecodeMilestones(encoded); err != nil {
		return &ValidationError{Collection: CollectionClubMaterial, Arg: "milestones", Message: err.Error()}
	}
	rec.Fields["milestones"] = milestones
	return nil
}

func buildClubPost(ctx CallContext, args []any) (*record.Record, error) {
	id := args[0].(string)
	idChannel := args[1].(string)
	clubRef := args[2].(record.Ref)
	creatorRef := args[3].(record.Ref)
	createdAt := args[5].(int64)

	// The id is fully determined by the other arguments:
	// clubId/channelId[/parentPostId]/creatorAddress/timestampMillis.
	want := clubRef.ID + "/" + idChannel + "/"
	if parentRef, ok := args[7].(record.Ref); ok {
		want += parentRef.ID + "/"
	}
	want += creatorRef.ID + "/" + strconv.FormatInt(createdAt, 10)
	if id != want {
		return nil, &ValidationError{
			Collection: CollectionClubPost,
			Arg:        "id",
			Message:    fmt.Sprintf("must be %q (clubId/channelId[/parentPostId]/creatorAddress/timestampMillis)", want),
		}
	}

	rec := record.New(CollectionClubPost, id)
	rec.Fields["id"] = id
	rec.Fields["idChannel"] = idChannel
	rec.Fields["club"] = clubRef
	rec.Fields["creator"] = creatorRef
	rec.Fields["content"] = args[4]
	rec.Fields["createdAt"] = createdAt
	rec.Fields["reactions"] = map[string]any{}
	setOptional(rec, "proofOfMembership", args[6])
	setOptional(rec, "parentPost", args[7])
	return rec, nil
}

func applyReact(ctx CallContext, rec *record.Record, args []any) error {
	reactions := rec.Object("reactions")
	if reactions == nil {
		reactions = map[string]any{}
	}
	reactions[ctx.Caller] = args[0]
	rec.Fields["reactions"] = reactions
	return nil
}

func buildRSVP(ctx CallContext, args []any) (*record.Record, error) {
	id := args[0].(string)
	profileRef := args[2].(record.Ref)

	if !strings.HasSuffix(id, "/"+profileRef.ID) {
		return nil, &ValidationError{
			Collection: CollectionRSVP,
			Arg:        "id",
			Message:    "must be \"milestoneId/memberAddress\"",
		}
	}

	rec := record.New(CollectionRSVP, id)
	rec.Fields["id"] = id
	rec.Fields["idEvent"] = args[1]
	rec.Fields["profile"] = profileRef
	return rec, nil
}

func setOptional(rec *record.Record, field string, v any) {
	if v != nil {
		rec.Fields[field] = v
	}
}
