package club

import (
	"context"

	"github.com/google/uuid"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/cache"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
)

// NewMaterial carries the descriptive fields of a source material.
// Optional fields left empty are omitted from the record.
type NewMaterial struct {
	Title          string
	Description    string
	Authors        []string
	Format         string
	Type           string
	ThumbnailURI   string
	Language       string
	Genres         []string
	YearPublished  string
	MaturityRating string
}

// SourceMaterial returns a source material by id.
func (c *Client) SourceMaterial(ctx context.Context, id string) (SourceMaterial, error) {
	return fetchTyped(ctx, c, keySourceMaterial(id), func(ctx context.Context) (SourceMaterial, error) {
		rec, err := c.conn.Get(ctx, schema.CollectionSourceMaterial, id)
		if err != nil {
			return SourceMaterial{}, classifyTransport("get source material", err)
		}
		return sourceMaterialFromRecord(rec), nil
	})
}

// AddSourceMaterial registers a new source material with a fresh UUIDv7
// id. Any authenticated identity may add material.
func (s *Session) AddSourceMaterial(ctx context.Context, m NewMaterial) (SourceMaterial, error) {
	id := uuid.Must(uuid.NewV7()).String()

	var out SourceMaterial
	err := s.mutate(ctx, "add source material", func(signed auth.SignedChallenge) error {
		args := []any{id, m.Title, m.Description, m.Authors, m.Format, m.Type,
			optional(m.ThumbnailURI), optional(m.Language), optionalStrings(m.Genres),
			optional(m.YearPublished), optional(m.MaturityRating)}
		rec, err := s.client.conn.Create(ctx, schema.CollectionSourceMaterial, args, signed)
		if err != nil {
			return err
		}
		out = sourceMaterialFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keySourceMaterial(id))
	})
	return out, err
}

// RateMaterial records the caller's rating, overwriting any earlier one.
func (s *Session) RateMaterial(ctx context.Context, materialID string, score int64) (SourceMaterial, error) {
	var out SourceMaterial
	err := s.mutate(ctx, "rate material", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Call(ctx, schema.CollectionSourceMaterial, materialID,
			"rate", []any{score}, signed)
		if err != nil {
			return err
		}
		out = sourceMaterialFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keySourceMaterial(materialID))
	})
	return out, err
}

// ClubMaterial returns a club's material assignment by its composite id
// ("clubId/sourceMaterialId").
func (c *Client) ClubMaterial(ctx context.Context, id string) (ClubMaterial, error) {
	return fetchTyped(ctx, c, keyClubMaterial(id), func(ctx context.Context) (ClubMaterial, error) {
		rec, err := c.conn.Get(ctx, schema.CollectionClubMaterial, id)
		if err != nil {
			return ClubMaterial{}, classifyTransport("get club material", err)
		}
		return clubMaterialFromRecord(rec)
	})
}

// AddClubMaterial assigns a source material to a club.
func (s *Session) AddClubMaterial(ctx context.Context, clubID, materialID string) (ClubMaterial, error) {
	id := clubID + "/" + materialID
	materialRef := record.NewRef(schema.CollectionSourceMaterial, materialID)
	clubRef := record.NewRef(schema.CollectionClub, clubID)
	createdAt := s.client.now().UnixMilli()

	var out ClubMaterial
	err := s.mutate(ctx, "add club material", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Create(ctx, schema.CollectionClubMaterial,
			[]any{id, materialRef, clubRef, createdAt}, signed)
		if err != nil {
			return err
		}
		out, err = clubMaterialFromRecord(rec)
		return err
	}, func(c *cache.Cache) {
		c.Invalidate(keyClubMaterial(id))
	})
	return out, err
}

// SetMilestones replaces a club material's reading schedule wholesale.
// Last writer wins; there is no merge.
func (s *Session) SetMilestones(ctx context.Context, clubMaterialID string, milestones []record.Milestone) (ClubMaterial, error) {
	encoded, err := record.EncodeMilestones(milestones)
	if err != nil {
		return ClubMaterial{}, err
	}

	var out ClubMaterial
	err = s.mutate(ctx, "set milestones", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Call(ctx, schema.CollectionClubMaterial, clubMaterialID,
			"setMilestones", []any{encoded}, signed)
		if err != nil {
			return err
		}
		out, err = clubMaterialFromRecord(rec)
		return err
	}, func(c *cache.Cache) {
		c.Invalidate(keyClubMaterial(clubMaterialID))
	})
	return out, err
}

// SetCurrentMaterial points a club at its active material assignment.
func (s *Session) SetCurrentMaterial(ctx context.Context, clubID, clubMaterialID string) (Club, error) {
	var out Club
	err := s.mutate(ctx, "set current material", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Call(ctx, schema.CollectionClub, clubID,
			"setCurrentMaterial", []any{clubMaterialID}, signed)
		if err != nil {
			return err
		}
		out = clubFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keyClub(clubID))
	})
	return out, err
}

// RemoveClubMaterial deletes a material assignment.
func (s *Session) RemoveClubMaterial(ctx context.Context, clubMaterialID string) error {
	return s.mutate(ctx, "remove club material", func(signed auth.SignedChallenge) error {
		return s.client.conn.Delete(ctx, schema.CollectionClubMaterial, clubMaterialID, signed)
	}, func(c *cache.Cache) {
		c.Invalidate(keyClubMaterial(clubMaterialID))
	})
}

// optional maps "" to an omitted argument.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optionalStrings(ss []string) any {
	if ss == nil {
		return nil
	}
	return ss
}
