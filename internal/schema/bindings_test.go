package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthside/hangouts/internal/record"
)

const (
	callerAlice = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	callerBob   = "0x0000000000000000000000000000000000000B0b"
)

func resolveOnly(recs ...*record.Record) CallContext {
	byKey := make(map[string]*record.Record, len(recs))
	for _, r := range recs {
		byKey[r.Collection+"/"+r.ID] = r
	}
	return CallContext{
		Caller: callerAlice,
		Resolve: func(ref record.Ref) (*record.Record, error) {
			return byKey[ref.Collection+"/"+ref.ID], nil
		},
	}
}

func TestBuildUserProfile_NormalizesAddressAndBindsCaller(t *testing.T) {
	ctx := CallContext{Caller: callerAlice}
	rec, err := buildUserProfile(ctx, []any{
		"0xab5801a7d398351b8be11c439e05c5b3259aec9b", "Alice", "reader of mysteries", "ipfs://avatar",
	})
	require.NoError(t, err)

	assert.Equal(t, callerAlice, rec.ID)
	assert.Equal(t, callerAlice, rec.String("id"))
	assert.Equal(t, callerAlice, rec.String("publicKey"))
	assert.Equal(t, "Alice", rec.String("displayName"))
}

func TestBuildUserProfile_RejectsBadAddress(t *testing.T) {
	_, err := buildUserProfile(CallContext{Caller: callerAlice}, []any{"alice", "Alice", "", ""})
	assert.True(t, IsValidation(err))
}

func TestBuildClub_CreatorComesFromCaller(t *testing.T) {
	rec, err := buildClub(CallContext{Caller: callerAlice}, []any{
		"club-1", "Night Readers", "late night fiction",
		[]any{"mystery"}, record.NewRef(CollectionUserProfile, callerAlice),
		"ipfs://cover", true,
	})
	require.NoError(t, err)

	assert.Equal(t, callerAlice, rec.String("creatorPublicKey"))
	assert.Equal(t, "", rec.String("currentClubMaterial"))
	assert.True(t, rec.Bool("openToNewMembers"))
}

func TestBuildClubMembership_CompositeIDEnforced(t *testing.T) {
	theClub := record.New(CollectionClub, "club-1")
	theClub.Fields["creatorPublicKey"] = callerBob
	ctx := resolveOnly(theClub)

	clubRef := record.NewRef(CollectionClub, "club-1")
	memberRef := record.NewRef(CollectionUserProfile, callerAlice)

	rec, err := buildClubMembership(ctx, []any{callerAlice + "/club-1", clubRef, memberRef})
	require.NoError(t, err)
	assert.Equal(t, callerAlice, rec.String("memberPublicKey"))
	assert.Equal(t, []string{callerAlice, callerBob}, rec.Strings("canRevoke"))

	_, err = buildClubMembership(ctx, []any{"wrong-id", clubRef, memberRef})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.ErrorContains(t, err, "memberAddress/clubId")
}

func TestBuildClubMembership_MissingClubIsValidation(t *testing.T) {
	ctx := resolveOnly() // no clubs exist
	_, err := buildClubMembership(ctx, []any{
		callerAlice + "/ghost",
		record.NewRef(CollectionClub, "ghost"),
		record.NewRef(CollectionUserProfile, callerAlice),
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.ErrorContains(t, err, "referenced club does not exist")
}

func TestBuildSourceMaterial_OptionalsStayAbsent(t *testing.T) {
	rec, err := buildSourceMaterial(CallContext{Caller: callerAlice}, []any{
		"mat-1", "Dune", "sand and politics", []any{"Frank Herbert"},
		"paperback", "book",
		nil, nil, nil, nil, nil,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{}, rec.Object("ratings"))
	_, hasThumb := rec.Fields["thumbnailURI"]
	assert.False(t, hasThumb)
	_, hasYear := rec.Fields["yearPublished"]
	assert.False(t, hasYear)
}

func TestApplyRate_OverwritesCallersOwnScore(t *testing.T) {
	rec := record.New(CollectionSourceMaterial, "mat-1")
	rec.Fields["ratings"] = map[string]any{callerBob: int64(2)}

	require.NoError(t, applyRate(CallContext{Caller: callerAlice}, rec, []any{int64(5)}))
	require.NoError(t, applyRate(CallContext{Caller: callerAlice}, rec, []any{int64(4)}))

	assert.Equal(t, map[string]any{callerBob: int64(2), callerAlice: int64(4)}, rec.Object("ratings"))
}

func TestBuildClubMaterial_CompositeIDEnforced(t *testing.T) {
	materialRef := record.NewRef(CollectionSourceMaterial, "mat-1")
	clubRef := record.NewRef(CollectionClub, "club-1")

	rec, err := buildClubMaterial(CallContext{Caller: callerAlice}, []any{
		"club-1/mat-1", materialRef, clubRef, int64(1717200000000),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{}, rec.Fields["milestones"])
	assert.Equal(t, int64(1717200000000), rec.Int("createdAt"))

	_, err = buildClubMaterial(CallContext{Caller: callerAlice}, []any{
		"mat-1/club-1", materialRef, clubRef, int64(0),
	})
	assert.True(t, IsValidation(err))
}

func TestApplySetMilestones_ValidatesEveryEntry(t *testing.T) {
	rec := record.New(CollectionClubMaterial, "club-1/mat-1")

	good := []any{`{"id":"m1","notes":"","startAt":1717200000000,"title":"Chapters 1-4"}`}
	require.NoError(t, applySetMilestones(CallContext{Caller: callerAlice}, rec, []any{good}))
	assert.Equal(t, good, rec.Fields["milestones"])

	err := applySetMilestones(CallContext{Caller: callerAlice}, rec, []any{[]any{`not json`}})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, good, rec.Fields["milestones"], "failed call must not clobber existing milestones")
}

func TestBuildClubPost_IDGrammarEnforced(t *testing.T) {
	clubRef := record.NewRef(CollectionClub, "club-1")
	creatorRef := record.NewRef(CollectionUserProfile, callerAlice)

	rec, err := buildClubPost(CallContext{Caller: callerAlice}, []any{
		"club-1/general/" + callerAlice + "/1717200000000",
		"general", clubRef, creatorRef, "hello hearthside", int64(1717200000000),
		nil, nil,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, rec.Object("reactions"))
	_, hasProof := rec.Fields["proofOfMembership"]
	assert.False(t, hasProof)

	_, err = buildClubPost(CallContext{Caller: callerAlice}, []any{
		"club-2/general/" + callerAlice + "/1",
		"general", clubRef, creatorRef, "hello", int64(1),
		nil, nil,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.ErrorContains(t, err, "clubId/channelId")

	// A reply id must carry the parent post between the channel and the
	// creator segments.
	parent := record.NewRef(CollectionClubPost, "club-1/general/"+callerBob+"/1")
	_, err = buildClubPost(CallContext{Caller: callerAlice}, []any{
		"club-1/general/" + callerAlice + "/2",
		"general", clubRef, creatorRef, "replying", int64(2),
		nil, parent,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.ErrorContains(t, err, "parentPostId")

	// The id's trailing timestamp must match createdAt.
	_, err = buildClubPost(CallContext{Caller: callerAlice}, []any{
		"club-1/general/" + callerAlice + "/1",
		"general", clubRef, creatorRef, "hello", int64(2),
		nil, nil,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestBuildClubPost_OptionalRefsAttach(t *testing.T) {
	clubRef := record.NewRef(CollectionClub, "club-1")
	proof := record.NewRef(CollectionClubMembership, callerAlice+"/club-1")
	parent := record.NewRef(CollectionClubPost, "club-1/general/"+callerBob+"/1")

	rec, err := buildClubPost(CallContext{Caller: callerAlice}, []any{
		"club-1/general/" + parent.ID + "/" + callerAlice + "/2",
		"general", clubRef, record.NewRef(CollectionUserProfile, callerAlice),
		"replying", int64(2), proof, parent,
	})
	require.NoError(t, err)

	gotProof, ok := rec.Ref("proofOfMembership")
	require.True(t, ok)
	assert.Equal(t, proof, gotProof)
	gotParent, ok := rec.Ref("parentPost")
	require.True(t, ok)
	assert.Equal(t, parent, gotParent)
}

func TestApplyReact_KeyedByCaller(t *testing.T) {
	rec := record.New(CollectionClubPost, "club-1/general/x/1")
	rec.Fields["reactions"] = map[string]any{}

	require.NoError(t, applyReact(CallContext{Caller: callerBob}, rec, []any{int64(128077)}))
	assert.Equal(t, map[string]any{callerBob: int64(128077)}, rec.Object("reactions"))
}

func TestBuildRSVP_IDSuffixEnforced(t *testing.T) {
	profileRef := record.NewRef(CollectionUserProfile, callerAlice)

	rec, err := buildRSVP(CallContext{Caller: callerAlice}, []any{
		"m1/" + callerAlice, "m1", profileRef,
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", rec.String("idEvent"))

	_, err = buildRSVP(CallContext{Caller: callerAlice}, []any{"m1/somebody-else", "m1", profileRef})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
