package club

import (
	"github.com/hearthside/hangouts/internal/record"
)

// Profile is a user profile. Its ID is the owning wallet address.
type Profile struct {
	ID          string
	PublicKey   string
	DisplayName string
	Bio         string
	AvatarURI   string
}

// Club is a reading club. Membership is derived from ClubMembership
// records, never stored on the club itself.
type Club struct {
	ID                  string
	Name                string
	Description         string
	Genres              []string
	CreatorID           string
	CreatorPublicKey    string
	CoverURI            string
	OpenToNewMembers    bool
	CurrentClubMaterial string
}

// Membership joins a profile to a club. Its ID is
// "memberAddress/clubId", which doubles as the proof-of-membership
// handle other operations reference.
type Membership struct {
	ID              string
	ClubID          string
	MemberID        string
	MemberPublicKey string
	CanRevoke       []string
}

// SourceMaterial is a book or other reading material. Ratings are keyed
// by rater address with overwrite semantics.
type SourceMaterial struct {
	ID             string
	Title          string
	Description    string
	Authors        []string
	Ratings        map[string]int64
	Format         string
	Type           string
	ThumbnailURI   string
	Language       string
	Genres         []string
	YearPublished  string
	MaturityRating string
}

// ClubMaterial assigns a source material to a club with a reading
// schedule. Its ID is "clubId/sourceMaterialId".
type ClubMaterial struct {
	ID               string
	ClubID           string
	MaterialID       string
	CreatorPublicKey string
	Milestones       []record.Milestone
	CreatedAt        int64
}

// Post is a message in a club channel. Reactions are keyed by reactor
// address. ParentID threads replies.
type Post struct {
	ID        string
	Channel   string
	ClubID    string
	CreatorID string
	Content   string
	CreatedAt int64
	Reactions map[string]int64
	ProofID   string
	ParentID  string
}

// RSVP marks a profile as attending a milestone event. Its ID is
// "milestoneId/memberAddress".
type RSVP struct {
	ID        string
	EventID   string
	ProfileID string
}

func profileFromRecord(rec *record.Record) Profile {
	return Profile{
		ID:          rec.ID,
		PublicKey:   rec.String("publicKey"),
		DisplayName: rec.String("displayName"),
		Bio:         rec.String("bio"),
		AvatarURI:   rec.String("avatarURI"),
	}
}

func clubFromRecord(rec *record.Record) Club {
	creator, _ := rec.Ref("creator")
	return Club{
		ID:                  rec.ID,
		Name:                rec.String("name"),
		Description:         rec.String("description"),
		Genres:              rec.Strings("genres"),
		CreatorID:           creator.ID,
		CreatorPublicKey:    rec.String("creatorPublicKey"),
		CoverURI:            rec.String("coverURI"),
		OpenToNewMembers:    rec.Bool("openToNewMembers"),
		CurrentClubMaterial: rec.String("currentClubMaterial"),
	}
}

func membershipFromRecord(rec *record.Record) Membership {
	clubRef, _ := rec.Ref("club")
	memberRef, _ := rec.Ref("member")
	return Membership{
		ID:              rec.ID,
		ClubID:          clubRef.ID,
		MemberID:        memberRef.ID,
		MemberPublicKey: rec.String("memberPublicKey"),
		CanRevoke:       rec.Strings("canRevoke"),
	}
}

func sourceMaterialFromRecord(rec *record.Record) SourceMaterial {
	return SourceMaterial{
		ID:             rec.ID,
		Title:          rec.String("title"),
		Description:    rec.String("description"),
		Authors:        rec.Strings("authors"),
		Ratings:        intMap(rec.Object("ratings")),
		Format:         rec.String("format"),
		Type:           rec.String("type"),
		ThumbnailURI:   rec.String("thumbnailURI"),
		Language:       rec.String("language"),
		Genres:         rec.Strings("genres"),
		YearPublished:  rec.String("yearPublished"),
		MaturityRating: rec.String("maturityRating"),
	}
}

func clubMaterialFromRecord(rec *record.Record) (ClubMaterial, error) {
	clubRef, _ := rec.Ref("club")
	materialRef, _ := rec.Ref("material")
	milestones, err := record.DecodeMilestones(rec.Strings("milestones"))
	if err != nil {
		return ClubMaterial{}, err
	}
	return ClubMaterial{
		ID:               rec.ID,
		ClubID:           clubRef.ID,
		MaterialID:       materialRef.ID,
		CreatorPublicKey: rec.String("creatorPublicKey"),
		Milestones:       milestones,
		CreatedAt:        rec.Int("createdAt"),
	}, nil
}

func postFromRecord(rec *record.Record) Post {
	clubRef, _ := rec.Ref("club")
	creatorRef, _ := rec.Ref("creator")
	post := Post{
		ID:        rec.ID,
		Channel:   rec.String("idChannel"),
		ClubID:    clubRef.ID,
		CreatorID: creatorRef.ID,
		Content:   rec.String("content"),
		CreatedAt: rec.Int("createdAt"),
		Reactions: intMap(rec.Object("reactions")),
	}
	if proof, ok := rec.Ref("proofOfMembership"); ok {
		post.ProofID = proof.ID
	}
	if parent, ok := rec.Ref("parentPost"); ok {
		post.ParentID = parent.ID
	}
	return post
}

func rsvpFromRecord(rec *record.Record) RSVP {
	profileRef, _ := rec.Ref("profile")
	return RSVP{
		ID:        rec.ID,
		EventID:   rec.String("idEvent"),
		ProfileID: profileRef.ID,
	}
}

func intMap(m map[string]any) map[string]int64 {
	if m == nil {
		return nil
	}
	out := make(map[string]int64, len(m))
	for k, v := range m {
		if n, ok := v.(int64); ok {
			out[k] = n
		}
	}
	return out
}
