package club

import (
	"context"
	"fmt"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/cache"
	"github.com/hearthside/hangouts/internal/identity"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
)

// ChannelPosts returns every post in a channel, ordered by id. Post ids
// embed the creation timestamp, so id order is chronological per author.
func (c *Client) ChannelPosts(ctx context.Context, channel string) ([]Post, error) {
	return fetchTyped(ctx, c, keyPostsChannel(channel), func(ctx context.Context) ([]Post, error) {
		recs, err := c.conn.Query(ctx, schema.CollectionClubPost, "idChannel", "==", channel)
		if err != nil {
			return nil, classifyTransport("query posts", err)
		}
		posts := make([]Post, len(recs))
		for i, rec := range recs {
			posts[i] = postFromRecord(rec)
		}
		return posts, nil
	})
}

// PostMessage writes a post to a club channel. When the caller is not
// the club creator, the caller's membership travels along as the proof
// the constructor rule checks. ParentID threads a reply; pass "" for a
// top-level post. The post id embeds the reply's parent, so the thread
// is readable off the id alone:
//
//	clubId/channelId[/parentPostId]/creatorAddress/timestampMillis
func (s *Session) PostMessage(ctx context.Context, clubID, channel, content, parentID string) (Post, error) {
	theClub, err := s.client.Club(ctx, clubID)
	if err != nil {
		return Post{}, err
	}

	createdAt := s.client.now().UnixMilli()
	id := fmt.Sprintf("%s/%s/%s/%d", clubID, channel, s.address, createdAt)
	if parentID != "" {
		id = fmt.Sprintf("%s/%s/%s/%s/%d", clubID, channel, parentID, s.address, createdAt)
	}
	clubRef := record.NewRef(schema.CollectionClub, clubID)
	creatorRef := record.NewRef(schema.CollectionUserProfile, s.address)

	var proof any
	if !identity.SameAddress(theClub.CreatorPublicKey, s.address) {
		proof = record.NewRef(schema.CollectionClubMembership, s.address+"/"+clubID)
	}
	var parent any
	if parentID != "" {
		parent = record.NewRef(schema.CollectionClubPost, parentID)
	}

	var out Post
	err = s.mutate(ctx, "post message", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Create(ctx, schema.CollectionClubPost,
			[]any{id, channel, clubRef, creatorRef, content, createdAt, proof, parent}, signed)
		if err != nil {
			return err
		}
		out = postFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keyPostsChannel(channel))
	})
	return out, err
}

// React records the caller's reaction to a post, overwriting any
// earlier one.
func (s *Session) React(ctx context.Context, postID, channel string, reaction int64) (Post, error) {
	var out Post
	err := s.mutate(ctx, "react", func(signed auth.SignedChallenge) error {
		rec, err := s.client.conn.Call(ctx, schema.CollectionClubPost, postID,
			"react", []any{reaction}, signed)
		if err != nil {
			return err
		}
		out = postFromRecord(rec)
		return nil
	}, func(c *cache.Cache) {
		c.Invalidate(keyPostsChannel(channel))
	})
	return out, err
}
