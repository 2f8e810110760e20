package club

import "github.com/hearthside/hangouts/internal/cache"

// Cache keys mirror the read they cache, one key family per query
// shape. Mutations invalidate exactly the families they can stale.

func keyProfile(address string) string { return cache.Key("profile", address) }
func keyClub(id string) string         { return cache.Key("club", id) }
func keyClubs() string                 { return cache.Key("clubs") }

func keyClubsFiltered(field, op, value string) string {
	return cache.Key("clubs-filtered", field, op, value)
}

func keyMembership(id string) string        { return cache.Key("membership", id) }
func keyMemberships(address string) string  { return cache.Key("memberships", address) }
func keySourceMaterial(id string) string    { return cache.Key("source-material", id) }
func keyClubMaterial(id string) string      { return cache.Key("club-material", id) }
func keyPostsChannel(channel string) string { return cache.Key("posts-channel", channel) }

func keyRSVP(milestone, address string) string {
	return cache.Key("rsvp", milestone, address)
}

func keyRSVPsUser(address string) string { return cache.Key("rsvps-user", address) }
