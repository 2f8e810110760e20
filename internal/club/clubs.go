package club

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/cache"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
)

// Club returns a club by id.
func (c *Client) Club(ctx context.Context, id string) (Club, error) {
	return fetchTyped(ctx, c, keyClub(id), func(ctx context.Context) (Club, error) {
		rec, err := c.conn.Get(ctx, schema.CollectionClub, id)
		if err != nil {
			return Club{}, classifyTransport("get club", err)
		}
		return clubFromRecord(rec), nil
	})
}

// Clubs returns every club, ordered by id.
func (c *Client) Clubs(ctx context.Context) ([]Club, error) {
	return fetchTyped(ctx, c, keyClubs(), func(ctx context.Context) ([]Club, error) {
		recs, err := c.conn.List(ctx, schema.CollectionClub)
		if err != nil {
			return nil, classifyTransport("list clubs", err)
		}
		clubs := make([]Club, len(recs))
		for i, rec := range recs {
			clubs[i] = clubFromRecord(rec)
		}
		return clubs, nil
	})
}

// QueryClubs returns clubs whose indexed field matches (op, value).
func (c *Client) QueryClubs(ctx context.Context, field, op, value string) ([]Club, error) {
	return fetchTyped(ctx, c, keyClubsFiltered(field, op, value), func(ctx context.Context) ([]Club, error) {
		recs, err := c.conn.Query(ctx, schema.CollectionClub, field, op, value)
		if err != nil {
			return nil, classifyTransport("query clubs", err)
		}
		clubs := make([]Club, len(recs))
		for i, rec := range recs {
			clubs[i] = clubFromRecord(rec)
		}
		return clubs, nil
	})
}

// CreateClub creates a club owned by the session identity. The club id
// is a fresh UUIDv7.
func (s *Session) CreateClub(ctx context.Context, name, description string, genres []string, coverURI string, openToNewMembers bool) (Club, error) {
	id := uuid.Must(uuid.NewV7()).String()
	creator := record.NewRef(schema.CollectionUserProfile, s.address)

	var out Club
	err := s.mutate(ctx, "create club", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Create(ctx, schema.CollectionClub,
			[]any{id, name, description, genres, creator, coverURI, openToNewMembers}, signed)
		if err != nil {
			return err
		}
		out = clubFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keyClubs())
		c.InvalidatePrefix("clubs-filtered")
	})
	return out, err
}

// UpdateClubInfo replaces a club's descriptive fields. Only the club
// creator passes the rule.
func (s *Session) UpdateClubInfo(ctx context.Context, clubID, name, description string, genres []string, coverURI string, openToNewMembers bool) (Club, error) {
	var out Club
	err := s.mutate(ctx, "update club", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Call(ctx, schema.CollectionClub, clubID,
			"updateClubInfo", []any{name, description, genres, coverURI, openToNewMembers}, signed)
		if err != nil {
			return err
		}
		out = clubFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keyClub(clubID), keyClubs())
		c.InvalidatePrefix("clubs-filtered")
	})
	return out, err
}

// DeleteClub removes a club. Memberships referencing it become dangling
// and stop granting anything.
func (s *Session) DeleteClub(ctx context.Context, clubID string) error {
	return s.mutate(ctx, "delete club", func(signed auth.SignedChallenge) error {
		return s.client.conn.Delete(ctx, schema.CollectionClub, clubID, signed)
	}, func(c *cache.Cache) {
		c.Invalidate(keyClub(clubID), keyClubs())
		c.InvalidatePrefix("clubs-filtered")
	})
}

// Membership returns one membership by its composite id
// ("memberAddress/clubId").
func (c *Client) Membership(ctx context.Context, id string) (Membership, error) {
	return fetchTyped(ctx, c, keyMembership(id), func(ctx context.Context) (Membership, error) {
		rec, err := c.conn.Get(ctx, schema.CollectionClubMembership, id)
		if err != nil {
			return Membership{}, classifyTransport("get membership", err)
		}
		return membershipFromRecord(rec), nil
	})
}

// Memberships returns every membership held by an address.
func (c *Client) Memberships(ctx context.Context, address string) ([]Membership, error) {
	return fetchTyped(ctx, c, keyMemberships(address), func(ctx context.Context) ([]Membership, error) {
		recs, err := c.conn.Query(ctx, schema.CollectionClubMembership, "member", "==",
			record.NewRef(schema.CollectionUserProfile, address))
		if err != nil {
			return nil, classifyTransport("query memberships", err)
		}
		members := make([]Membership, len(recs))
		for i, rec := range recs {
			members[i] = membershipFromRecord(rec)
		}
		return members, nil
	})
}

// ClubMembers returns every membership of a club.
func (c *Client) ClubMembers(ctx context.Context, clubID string) ([]Membership, error) {
	recs, err := c.conn.Query(ctx, schema.CollectionClubMembership, "club", "==",
		record.NewRef(schema.CollectionClub, clubID))
	if err != nil {
		return nil, classifyTransport("query club members", err)
	}
	members := make([]Membership, len(recs))
	for i, rec := range recs {
		members[i] = membershipFromRecord(rec)
	}
	return members, nil
}

// JoinClub creates the session identity's membership in a club. The
// composite id makes a second join of the same club a conflict, not a
// duplicate.
func (s *Session) JoinClub(ctx context.Context, clubID string) (Membership, error) {
	id := s.address + "/" + clubID
	clubRef := record.NewRef(schema.CollectionClub, clubID)
	memberRef := record.NewRef(schema.CollectionUserProfile, s.address)

	var out Membership
	err := s.mutate(ctx, "join club", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Create(ctx, schema.CollectionClubMembership,
			[]any{id, clubRef, memberRef}, signed)
		if err != nil {
			return err
		}
		out = membershipFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keyMembership(id), keyMemberships(s.address))
	})
	return out, err
}

// LeaveClub revokes a membership. Either the member or the club creator
// is on the revocation list, so this serves both "leave" and "kick".
func (s *Session) LeaveClub(ctx context.Context, membershipID string) error {
	member, _, _ := strings.Cut(membershipID, "/")
	return s.mutate(ctx, "leave club", func(signed auth.SignedChallenge) error {
		return s.client.conn.Delete(ctx, schema.CollectionClubMembership, membershipID, signed)
	}, func(c *cache.Cache) {
		c.Invalidate(keyMembership(membershipID), keyMemberships(member))
	})
}
