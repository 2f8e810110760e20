package club

import (
	"context"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/cache"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
)

// RSVP returns the session identity's RSVP for a milestone, if any.
// RSVPs are read-restricted: only the owning profile can see them, so
// every read is signed.
func (s *Session) RSVP(ctx context.Context, milestoneID string) (RSVP, error) {
	id := milestoneID + "/" + s.address
	return fetchTyped(ctx, s.client, keyRSVP(milestoneID, s.address), func(ctx context.Context) (RSVP, error) {
		signed, err := s.sign(ctx, "get rsvp")
		if err != nil {
			return RSVP{}, err
		}
		rec, err := s.client.conn.GetSigned(ctx, schema.CollectionRSVP, id, signed)
		if err != nil {
			return RSVP{}, classifyTransport("get rsvp", err)
		}
		return rsvpFromRecord(rec), nil
	})
}

// RSVPs returns every RSVP the session identity holds.
func (s *Session) RSVPs(ctx context.Context) ([]RSVP, error) {
	return fetchTyped(ctx, s.client, keyRSVPsUser(s.address), func(ctx context.Context) ([]RSVP, error) {
		signed, err := s.sign(ctx, "query rsvps")
		if err != nil {
			return nil, err
		}
		recs, err := s.client.conn.QuerySigned(ctx, schema.CollectionRSVP, "profile", "==",
			record.NewRef(schema.CollectionUserProfile, s.address), signed)
		if err != nil {
			return nil, classifyTransport("query rsvps", err)
		}
		rsvps := make([]RSVP, len(recs))
		for i, rec := range recs {
			rsvps[i] = rsvpFromRecord(rec)
		}
		return rsvps, nil
	})
}

// Attend creates the session identity's RSVP for a milestone. The
// milestone id forms the composite record id; eventID names the
// external calendar event the RSVP points at.
func (s *Session) Attend(ctx context.Context, milestoneID, eventID string) (RSVP, error) {
	id := milestoneID + "/" + s.address
	profileRef := record.NewRef(schema.CollectionUserProfile, s.address)

	var out RSVP
	err := s.mutate(ctx, "attend", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Create(ctx, schema.CollectionRSVP,
			[]any{id, eventID, profileRef}, signed)
		if err != nil {
			return err
		}
		out = rsvpFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keyRSVP(milestoneID, s.address), keyRSVPsUser(s.address))
	})
	return out, err
}

// CancelRSVP withdraws the session identity's RSVP for a milestone.
func (s *Session) CancelRSVP(ctx context.Context, milestoneID string) error {
	id := milestoneID + "/" + s.address
	return s.mutate(ctx, "cancel rsvp", func(signed auth.SignedChallenge) error {
		return s.client.conn.Delete(ctx, schema.CollectionRSVP, id, signed)
	}, func(c *cache.Cache) {
		c.Invalidate(keyRSVP(milestoneID, s.address), keyRSVPsUser(s.address))
	})
}
