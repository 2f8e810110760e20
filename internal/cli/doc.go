// Package cli implements the hangouts command line interface: schema
// inspection, identity management, and the club, material, post, and
// RSVP operations, with text or JSON output.
package cli
