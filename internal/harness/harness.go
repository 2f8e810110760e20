package harness

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/authz"
	"github.com/hearthside/hangouts/internal/identity"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
	"github.com/hearthside/hangouts/internal/store"
	"github.com/hearthside/hangouts/internal/testutil"
)

// Runner executes scenarios against a fresh store with three known
// actors: alice, bob, and carol.
type Runner struct {
	t       *testing.T
	store   *store.Store
	signers map[string]identity.Signer
	addrs   map[string]string
}

// New creates a runner with a fresh SQLite store under the test's temp
// directory.
func New(t *testing.T) *Runner {
	t.Helper()

	registry, err := schema.Load()
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(t.TempDir(), "harness.db"), registry)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	r := &Runner{
		t:       t,
		store:   st,
		signers: make(map[string]identity.Signer),
		addrs:   make(map[string]string),
	}
	for name, key := range map[string]string{
		"alice": testutil.KeyAlice,
		"bob":   testutil.KeyBob,
		"carol": testutil.KeyCarol,
	} {
		signer := testutil.Signer(t, key)
		r.signers[name] = signer
		r.addrs[name] = signer.Address()
	}
	return r
}

// Store exposes the underlying store for extra assertions.
func (r *Runner) Store() *store.Store {
	return r.store
}

// Address returns an actor's checksummed address.
func (r *Runner) Address(actor string) string {
	addr, ok := r.addrs[actor]
	require.True(r.t, ok, "unknown actor %q", actor)
	return addr
}

// Run executes every step of a scenario in order.
func (r *Runner) Run(s *Scenario) {
	r.t.Helper()
	ctx := context.Background()

	for i, step := range s.Steps {
		rec, recs, err := r.execute(ctx, step)

		expect := step.Expect
		if expect == "" {
			expect = "ok"
		}
		got := outcome(err)
		require.Equalf(r.t, expect, got,
			"scenario %s step %d (%s %s): unexpected outcome (err: %v)",
			s.Name, i, step.Op, step.Collection, err)

		if expect != "ok" {
			continue
		}
		if step.Fields != nil {
			require.NotNilf(r.t, rec, "scenario %s step %d: no record to match fields on", s.Name, i)
			r.matchFields(s.Name, i, step.Fields, rec)
		}
		if step.Count != nil {
			require.Lenf(r.t, recs, *step.Count, "scenario %s step %d: query count", s.Name, i)
		}
	}
}

func (r *Runner) execute(ctx context.Context, step Step) (*record.Record, []*record.Record, error) {
	switch step.Op {
	case "create":
		signed := r.sign(step.Actor)
		rec, err := r.store.Create(ctx, step.Collection, r.substituteArgs(step.Args), signed)
		return rec, nil, err
	case "call":
		signed := r.sign(step.Actor)
		rec, err := r.store.Call(ctx, step.Collection, r.substitute(step.ID), step.Function, r.substituteArgs(step.Args), signed)
		return rec, nil, err
	case "delete":
		signed := r.sign(step.Actor)
		return nil, nil, r.store.Delete(ctx, step.Collection, r.substitute(step.ID), signed)
	case "get":
		spec, err := r.store.Registry().Collection(step.Collection)
		if err != nil {
			return nil, nil, err
		}
		if spec.Read != nil {
			signed := r.sign(step.Actor)
			rec, err := r.store.GetSigned(ctx, step.Collection, r.substitute(step.ID), signed)
			return rec, nil, err
		}
		rec, err := r.store.Get(ctx, step.Collection, r.substitute(step.ID))
		return rec, nil, err
	case "query":
		require.Lenf(r.t, step.Args, 3, "query args must be [field, op, value]")
		field, _ := step.Args[0].(string)
		op, _ := step.Args[1].(string)
		value := r.substituteValue(step.Args[2])
		spec, err := r.store.Registry().Collection(step.Collection)
		if err != nil {
			return nil, nil, err
		}
		if spec.Read != nil {
			signed := r.sign(step.Actor)
			recs, err := r.store.QuerySigned(ctx, step.Collection, field, op, value, signed)
			return nil, recs, err
		}
		recs, err := r.store.Query(ctx, step.Collection, field, op, value)
		return nil, recs, err
	default:
		r.t.Fatalf("unknown op %q", step.Op)
		return nil, nil, nil
	}
}

// sign issues a challenge and signs it as the actor.
func (r *Runner) sign(actor string) auth.SignedChallenge {
	r.t.Helper()
	signer, ok := r.signers[actor]
	require.True(r.t, ok, "unknown actor %q", actor)
	signed, err := auth.SignChallenge(signer, r.store.IssueChallenge())
	require.NoError(r.t, err)
	return signed
}

// substitute replaces $actor placeholders in one string.
func (r *Runner) substitute(s string) string {
	for name, addr := range r.addrs {
		s = strings.ReplaceAll(s, "$"+name, addr)
	}
	return s
}

func (r *Runner) substituteArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = r.substituteValue(a)
	}
	return out
}

// substituteValue rewrites placeholders recursively and converts
// {ref: Collection, id: X} maps into record references.
func (r *Runner) substituteValue(v any) any {
	switch val := v.(type) {
	case string:
		return r.substitute(val)
	case []any:
		return r.substituteArgs(val)
	case map[string]any:
		if target, ok := val["ref"].(string); ok && len(val) == 2 {
			if id, ok := val["id"].(string); ok {
				return record.NewRef(target, r.substitute(id))
			}
		}
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = r.substituteValue(elem)
		}
		return out
	case int:
		return int64(val)
	default:
		return v
	}
}

func (r *Runner) matchFields(scenario string, step int, expected map[string]any, rec *record.Record) {
	r.t.Helper()
	for field, want := range expected {
		got := rec.Fields[field]
		if ref, ok := got.(record.Ref); ok {
			got = map[string]any{"ref": ref.Collection, "id": ref.ID}
		}
		require.Truef(r.t, reflect.DeepEqual(r.substituteValue(want), got),
			"scenario %s step %d: field %q: want %#v, got %#v",
			scenario, step, field, r.substituteValue(want), got)
	}
}

// outcome maps an error to its scenario expectation keyword.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case authz.IsDenied(err):
		return "denied"
	case schema.IsValidation(err):
		return "validation"
	case store.IsConflict(err):
		return "conflict"
	case store.IsNotFound(err):
		return "not-found"
	case errors.Is(err, auth.ErrChallengeUnknown), errors.Is(err, auth.ErrChallengeExpired):
		return "challenge"
	default:
		return "error"
	}
}
