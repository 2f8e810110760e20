package club

import (
	"context"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/cache"
	"github.com/hearthside/hangouts/internal/identity"
	"github.com/hearthside/hangouts/internal/schema"
)

// Profile returns a profile by wallet address.
func (c *Client) Profile(ctx context.Context, address string) (Profile, error) {
	addr, err := identity.NormalizeAddress(address)
	if err != nil {
		return Profile{}, err
	}
	return fetchTyped(ctx, c, keyProfile(addr), func(ctx context.Context) (Profile, error) {
		rec, err := c.conn.Get(ctx, schema.CollectionUserProfile, addr)
		if err != nil {
			return Profile{}, classifyTransport("get profile", err)
		}
		return profileFromRecord(rec), nil
	})
}

// CreateProfile creates the caller's profile. The profile id is the
// session address; the store rejects a mismatch.
func (s *Session) CreateProfile(ctx context.Context, displayName, bio, avatarURI string) (Profile, error) {
	var out Profile
	err := s.mutate(ctx, "create profile", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Create(ctx, schema.CollectionUserProfile,
			[]any{s.address, displayName, bio, avatarURI}, signed)
		if err != nil {
			return err
		}
		out = profileFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keyProfile(s.address))
	})
	return out, err
}

// UpdateProfile replaces the caller's display name, bio, and avatar.
func (s *Session) UpdateProfile(ctx context.Context, displayName, bio, avatarURI string) (Profile, error) {
	var out Profile
	err := s.mutate(ctx, "update profile", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Call(ctx, schema.CollectionUserProfile, s.address,
			"updateProfile", []any{displayName, bio, avatarURI}, signed)
		if err != nil {
			return err
		}
		out = profileFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keyProfile(s.address))
	})
	return out, err
}
