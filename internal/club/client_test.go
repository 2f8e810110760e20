package club_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthside/hangouts/internal/authz"
	"github.com/hearthside/hangouts/internal/cache"
	"github.com/hearthside/hangouts/internal/club"
	"github.com/hearthside/hangouts/internal/identity"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
	"github.com/hearthside/hangouts/internal/store"
	"github.com/hearthside/hangouts/internal/testutil"
)

type fixture struct {
	client *club.Client
	alice  *club.Session
	bob    *club.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	registry, err := schema.Load()
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(t.TempDir(), "club.db"), registry)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := testutil.NewDeterministicClock()
	c := club.NewClient(club.Direct{Store: st}, club.WithClock(clock.Now))
	return &fixture{
		client: c,
		alice:  c.SessionFor(testutil.Signer(t, testutil.KeyAlice)),
		bob:    c.SessionFor(testutil.Signer(t, testutil.KeyBob)),
	}
}

func (f *fixture) setup(t *testing.T) (clubID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.alice.CreateProfile(ctx, "Alice", "reads everything", "")
	require.NoError(t, err)
	_, err = f.bob.CreateProfile(ctx, "Bob", "", "")
	require.NoError(t, err)
	created, err := f.alice.CreateClub(ctx, "Night Readers", "late night fiction", []string{"mystery"}, "", true)
	require.NoError(t, err)
	return created.ID
}

func TestSession_RequiresAttachedSigner(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Session()
	assert.ErrorIs(t, err, identity.ErrIdentityUnavailable)

	f.client.SetSigner(testutil.Signer(t, testutil.KeyAlice))
	session, err := f.client.Session()
	require.NoError(t, err)
	assert.Equal(t, testutil.Address(t, testutil.KeyAlice), session.Address())
}

func TestProfileLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.alice.CreateProfile(ctx, "Alice", "reads everything", "ipfs://alice")
	require.NoError(t, err)
	assert.Equal(t, f.alice.Address(), created.ID)

	// A lowercase address reads the same profile.
	got, err := f.client.Profile(ctx, strings.ToLower(f.alice.Address()))
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName)

	updated, err := f.alice.UpdateProfile(ctx, "Alice M.", "still reading", "ipfs://alice2")
	require.NoError(t, err)
	assert.Equal(t, "Alice M.", updated.DisplayName)

	// The cached snapshot was invalidated by the update.
	got, err = f.client.Profile(ctx, f.alice.Address())
	require.NoError(t, err)
	assert.Equal(t, "Alice M.", got.DisplayName)
}

func TestClubLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clubID := f.setup(t)

	got, err := f.client.Club(ctx, clubID)
	require.NoError(t, err)
	assert.Equal(t, "Night Readers", got.Name)
	assert.Equal(t, f.alice.Address(), got.CreatorPublicKey)
	assert.Equal(t, f.alice.Address(), got.CreatorID)

	all, err := f.client.Clubs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	byName, err := f.client.QueryClubs(ctx, "name", "==", "Night Readers")
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	// Bob cannot edit alice's club; the denial reaches the caller intact.
	_, err = f.bob.UpdateClubInfo(ctx, clubID, "Hijacked", "", nil, "", false)
	assert.True(t, authz.IsDenied(err))

	_, err = f.alice.UpdateClubInfo(ctx, clubID, "Dawn Readers", "early fiction", []string{"fiction"}, "", true)
	require.NoError(t, err)

	// Both the point read and the listings see the new name.
	got, err = f.client.Club(ctx, clubID)
	require.NoError(t, err)
	assert.Equal(t, "Dawn Readers", got.Name)
	all, err = f.client.Clubs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dawn Readers", all[0].Name)
}

func TestMembershipLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clubID := f.setup(t)

	membership, err := f.bob.JoinClub(ctx, clubID)
	require.NoError(t, err)
	assert.Equal(t, f.bob.Address()+"/"+clubID, membership.ID)
	assert.ElementsMatch(t, []string{f.bob.Address(), f.alice.Address()}, membership.CanRevoke)

	// Joining twice conflicts on the composite id.
	_, err = f.bob.JoinClub(ctx, clubID)
	assert.True(t, store.IsConflict(err))

	mine, err := f.client.Memberships(ctx, f.bob.Address())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, clubID, mine[0].ClubID)

	members, err := f.client.ClubMembers(ctx, clubID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	// The club creator can kick bob through the revocation list.
	require.NoError(t, f.alice.LeaveClub(ctx, membership.ID))
	members, err = f.client.ClubMembers(ctx, clubID)
	require.NoError(t, err)
	assert.Empty(t, members)

	mine, err = f.client.Memberships(ctx, f.bob.Address())
	require.NoError(t, err)
	assert.Empty(t, mine, "kick must invalidate the member's own listing")
}

func TestPosting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clubID := f.setup(t)

	// Bob has not joined yet.
	_, err := f.bob.PostMessage(ctx, clubID, "general", "can I post?", "")
	assert.True(t, authz.IsDenied(err))

	_, err = f.bob.JoinClub(ctx, clubID)
	require.NoError(t, err)

	post, err := f.bob.PostMessage(ctx, clubID, "general", "made it in", "")
	require.NoError(t, err)
	assert.Equal(t, f.bob.Address()+"/"+clubID, post.ProofID)

	// The post id embeds exactly the timestamp stored as createdAt.
	assert.Equal(t,
		fmt.Sprintf("%s/general/%s/%d", clubID, f.bob.Address(), post.CreatedAt),
		post.ID)

	// The club creator posts without a proof.
	ownerPost, err := f.alice.PostMessage(ctx, clubID, "general", "welcome", "")
	require.NoError(t, err)
	assert.Empty(t, ownerPost.ProofID)

	// A reply carries its parent's id between the channel and creator
	// segments.
	reply, err := f.bob.PostMessage(ctx, clubID, "general", "thanks", ownerPost.ID)
	require.NoError(t, err)
	assert.Equal(t, ownerPost.ID, reply.ParentID)
	assert.Equal(t,
		fmt.Sprintf("%s/general/%s/%s/%d", clubID, ownerPost.ID, f.bob.Address(), reply.CreatedAt),
		reply.ID)

	reacted, err := f.alice.React(ctx, post.ID, "general", 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{f.alice.Address(): 1}, reacted.Reactions)

	posts, err := f.client.ChannelPosts(ctx, "general")
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestMaterialLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clubID := f.setup(t)

	material, err := f.alice.AddSourceMaterial(ctx, club.NewMaterial{
		Title:       "Dune",
		Description: "sand and politics",
		Authors:     []string{"Frank Herbert"},
		Format:      "paperback",
		Type:        "book",
	})
	require.NoError(t, err)
	assert.Empty(t, material.Ratings)
	assert.Empty(t, material.ThumbnailURI)

	rated, err := f.bob.RateMaterial(ctx, material.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{f.bob.Address(): 5}, rated.Ratings)

	assigned, err := f.alice.AddClubMaterial(ctx, clubID, material.ID)
	require.NoError(t, err)
	assert.Equal(t, clubID+"/"+material.ID, assigned.ID)
	assert.Empty(t, assigned.Milestones)

	milestones := []record.Milestone{
		{ID: "m1", Title: "Chapters 1-4", StartAt: 1717200000000},
		{ID: "m2", Title: "Chapters 5-9", StartAt: 1717804800000},
	}
	withSchedule, err := f.alice.SetMilestones(ctx, assigned.ID, milestones)
	require.NoError(t, err)
	assert.Equal(t, milestones, withSchedule.Milestones)

	// A second schedule replaces the first wholesale; nothing of the old
	// array survives, and a fresh read agrees.
	revised := []record.Milestone{
		{ID: "m3", Title: "Chapters 1-9", Notes: "merged sessions", StartAt: 1718409600000},
	}
	replaced, err := f.alice.SetMilestones(ctx, assigned.ID, revised)
	require.NoError(t, err)
	assert.Equal(t, revised, replaced.Milestones)
	reread, err := f.client.ClubMaterial(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, revised, reread.Milestones)

	// Bob neither owns the club nor created the assignment.
	_, err = f.bob.SetMilestones(ctx, assigned.ID, nil)
	assert.True(t, authz.IsDenied(err))

	current, err := f.alice.SetCurrentMaterial(ctx, clubID, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, assigned.ID, current.CurrentClubMaterial)

	require.NoError(t, f.alice.RemoveClubMaterial(ctx, assigned.ID))
	_, err = f.client.ClubMaterial(ctx, assigned.ID)
	assert.True(t, store.IsNotFound(err))
}

func TestRSVPLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setup(t)

	rsvp, err := f.alice.Attend(ctx, "m1", "evt-42")
	require.NoError(t, err)
	assert.Equal(t, "m1/"+f.alice.Address(), rsvp.ID)

	// The calendar event id is stored as supplied, distinct from the
	// milestone id in the composite record id.
	got, err := f.alice.RSVP(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "evt-42", got.EventID)

	all, err := f.alice.RSVPs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Bob's signed query sees none of alice's RSVPs.
	theirs, err := f.bob.RSVPs(ctx)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	require.NoError(t, f.alice.CancelRSVP(ctx, "m1"))
	_, err = f.alice.RSVP(ctx, "m1")
	assert.True(t, store.IsNotFound(err))
}

func TestReads_AreCachedUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clubID := f.setup(t)

	first, err := f.client.Club(ctx, clubID)
	require.NoError(t, err)
	assert.Empty(t, first.CurrentClubMaterial)

	sub := f.client.Cache().Subscribe(cache.Key("club", clubID))
	_, err = f.alice.SetCurrentMaterial(ctx, clubID, clubID+"/mat-1")
	require.NoError(t, err)

	select {
	case <-sub:
	default:
		t.Fatal("club snapshot not invalidated by mutation")
	}

	second, err := f.client.Club(ctx, clubID)
	require.NoError(t, err)
	assert.Equal(t, clubID+"/mat-1", second.CurrentClubMaterial)
}
