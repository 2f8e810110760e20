package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthside/hangouts/internal/authz"
)

func TestLoad_CompilesAllCollections(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		CollectionClub,
		CollectionClubMaterial,
		CollectionClubMembership,
		CollectionClubPost,
		CollectionRSVP,
		CollectionSourceMaterial,
		CollectionUserProfile,
	}, reg.Names())

	for _, spec := range reg.Collections() {
		assert.NotNilf(t, spec.Constructor.Build, "%s: constructor not bound", spec.Name)
		assert.NoErrorf(t, spec.Constructor.Rule.Validate(), "%s: constructor rule", spec.Name)
		for _, fn := range spec.Functions {
			assert.NotNilf(t, fn.Apply, "%s.%s: mutator not bound", spec.Name, fn.Name)
			assert.NoErrorf(t, fn.Rule.Validate(), "%s.%s: rule", spec.Name, fn.Name)
		}
		if spec.Delete != nil {
			assert.NoErrorf(t, spec.Delete.Rule.Validate(), "%s: delete rule", spec.Name)
		}
	}
}

func TestLoad_ClubSpecShape(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	club, err := reg.Collection(CollectionClub)
	require.NoError(t, err)

	assert.Equal(t, authz.RuleAnyone, club.Constructor.Rule.Kind)
	assert.Len(t, club.Constructor.Args, 7)
	assert.True(t, club.Indexed("creator"))
	assert.True(t, club.Indexed("name"))
	assert.False(t, club.Indexed("description"))

	update := club.Function("updateClubInfo")
	require.NotNil(t, update)
	assert.Equal(t, authz.RuleOwnerOnly, update.Rule.Kind)
	assert.Equal(t, []string{"creatorPublicKey"}, update.Rule.Owners)

	require.NotNil(t, club.Delete)
	assert.Equal(t, authz.RuleOwnerOnly, club.Delete.Rule.Kind)
	assert.Nil(t, club.Read)

	material := club.Field("currentClubMaterial")
	require.NotNil(t, material)
	assert.True(t, material.Optional)
	assert.Nil(t, club.Field("members"))
}

func TestLoad_MembershipHasNoFunctions(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	membership, err := reg.Collection(CollectionClubMembership)
	require.NoError(t, err)
	assert.Empty(t, membership.Functions)
	require.NotNil(t, membership.Delete)
	assert.Equal(t, authz.RuleRevocationList, membership.Delete.Rule.Kind)
	assert.Equal(t, "canRevoke", membership.Delete.Rule.List)
	assert.Equal(t, "member.id", membership.Constructor.Rule.Self)
}

func TestLoad_RSVPIsReadRestricted(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	rsvp, err := reg.Collection(CollectionRSVP)
	require.NoError(t, err)
	require.NotNil(t, rsvp.Read)
	assert.Equal(t, authz.RuleSelfOnly, rsvp.Read.Rule.Kind)
	assert.Equal(t, "profile.id", rsvp.Read.Rule.Self)
}

func TestLoad_SourceMaterialTrailingOptionals(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	material, err := reg.Collection(CollectionSourceMaterial)
	require.NoError(t, err)
	assert.Len(t, material.Constructor.Args, 11)
	assert.Equal(t, 6, RequiredArgs(material.Constructor.Args))
}

func TestRegistry_UnknownCollection(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)
	_, err = reg.Collection("Library")
	assert.Error(t, err)
}

func TestDumpJSON_DeterministicAndDecodable(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	first, err := reg.DumpJSON()
	require.NoError(t, err)
	second, err := reg.DumpJSON()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	var decoded []CollectionSpec
	require.NoError(t, json.Unmarshal(first, &decoded))
	require.Len(t, decoded, 7)
	assert.Equal(t, CollectionClub, decoded[0].Name)
}
