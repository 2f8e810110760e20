package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/authz"
	"github.com/hearthside/hangouts/internal/identity"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
)

// Create runs a collection constructor: authenticate, coerce arguments,
// build the candidate record, evaluate the constructor rule against the
// candidate, and persist. A duplicate id is a ConflictError.
func (s *Store) Create(ctx context.Context, collection string, args []any, signed auth.SignedChallenge) (*record.Record, error) {
	spec, err := s.registry.Collection(collection)
	if err != nil {
		return nil, err
	}

	caller, err := s.authenticate(signed)
	if err != nil {
		return nil, err
	}

	coerced, err := schema.CoerceArgs(collection, spec.Constructor.Args, args)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cctx := schema.CallContext{Caller: caller, Resolve: s.resolver(ctx)}
	candidate, err := spec.Constructor.Build(cctx, coerced)
	if err != nil {
		return nil, err
	}

	proofs, err := s.gatherProofs(ctx, caller, candidate)
	if err != nil {
		return nil, err
	}

	eval := authz.NewEvaluator(s.resolver(ctx))
	decision, err := eval.Can(spec.Constructor.Rule, caller, candidate, proofs)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.logger.Debug("create denied",
			"collection", collection, "id", candidate.ID, "caller", caller, "reason", decision.Reason)
		return nil, &authz.DeniedError{Collection: collection, Function: "constructor", Reason: decision.Reason}
	}

	if err := s.insert(ctx, spec, candidate); err != nil {
		return nil, err
	}
	s.logger.Debug("record created", "collection", collection, "id", candidate.ID, "caller", caller)
	return candidate, nil
}

// Call runs a named function on an existing record. The rule is
// evaluated against the record's pre-mutation state; the mutator runs on
// a copy, and the copy only replaces the original after both succeed.
func (s *Store) Call(ctx context.Context, collection, id, function string, args []any, signed auth.SignedChallenge) (*record.Record, error) {
	spec, err := s.registry.Collection(collection)
	if err != nil {
		return nil, err
	}
	fn := spec.Function(function)
	if fn == nil {
		return nil, &schema.ValidationError{Collection: collection, Message: fmt.Sprintf("unknown function %q", function)}
	}

	caller, err := s.authenticate(signed)
	if err != nil {
		return nil, err
	}

	coerced, err := schema.CoerceArgs(collection, fn.Args, args)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	state, err := s.get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	proofs, err := s.gatherProofs(ctx, caller, state)
	if err != nil {
		return nil, err
	}

	eval := authz.NewEvaluator(s.resolver(ctx))
	decision, err := eval.Can(fn.Rule, caller, state, proofs)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.logger.Debug("call denied",
			"collection", collection, "id", id, "function", function, "caller", caller, "reason", decision.Reason)
		return nil, &authz.DeniedError{Collection: collection, Function: function, Reason: decision.Reason}
	}

	next := state.Clone()
	cctx := schema.CallContext{Caller: caller, Resolve: s.resolver(ctx)}
	if err := fn.Apply(cctx, next, coerced); err != nil {
		return nil, err
	}

	if err := s.update(ctx, spec, next); err != nil {
		return nil, err
	}
	s.logger.Debug("record updated", "collection", collection, "id", id, "function", function, "caller", caller)
	return next, nil
}

// Delete removes a record after evaluating the collection's delete rule.
// Collections without a delete rule cannot be deleted at all.
func (s *Store) Delete(ctx context.Context, collection, id string, signed auth.SignedChallenge) error {
	spec, err := s.registry.Collection(collection)
	if err != nil {
		return err
	}
	if spec.Delete == nil {
		return &authz.DeniedError{Collection: collection, Function: "del", Reason: "collection does not support delete"}
	}

	caller, err := s.authenticate(signed)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	state, err := s.get(ctx, collection, id)
	if err != nil {
		return err
	}

	eval := authz.NewEvaluator(s.resolver(ctx))
	decision, err := eval.Can(spec.Delete.Rule, caller, state, nil)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		s.logger.Debug("delete denied",
			"collection", collection, "id", id, "caller", caller, "reason", decision.Reason)
		return &authz.DeniedError{Collection: collection, Function: "del", Reason: decision.Reason}
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE collection = ? AND id = ?
	`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: rows affected: %w", collection, id, err)
	}
	if affected == 0 {
		return &NotFoundError{Collection: collection, ID: id}
	}
	s.logger.Debug("record deleted", "collection", collection, "id", id, "caller", caller)
	return nil
}

// gatherProofs collects membership records that back an ownerOrMember
// check: an explicit proofOfMembership reference on the record, plus the
// caller's own membership for the record's club when one exists. The
// evaluator still verifies every proof against the caller and club.
func (s *Store) gatherProofs(ctx context.Context, caller string, state *record.Record) ([]*record.Record, error) {
	var proofs []*record.Record

	if ref, ok := state.Ref("proofOfMembership"); ok {
		proof, err := s.fetch(ctx, ref.Collection, ref.ID)
		if err != nil {
			return nil, err
		}
		if proof != nil {
			proofs = append(proofs, proof)
		}
	}

	if clubRef, ok := state.Ref("club"); ok {
		addr, err := identity.NormalizeAddress(caller)
		if err == nil {
			proof, err := s.fetch(ctx, schema.CollectionClubMembership, addr+"/"+clubRef.ID)
			if err != nil {
				return nil, err
			}
			if proof != nil {
				proofs = append(proofs, proof)
			}
		}
	}

	return proofs, nil
}

// insert writes a new record and its index entries in one transaction.
func (s *Store) insert(ctx context.Context, spec *schema.CollectionSpec, rec *record.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert %s/%s: begin tx: %w", rec.Collection, rec.ID, err)
	}
	defer tx.Rollback() // No-op if committed

	now := s.now().UnixMilli()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO records (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO NOTHING
	`, rec.Collection, rec.ID, data, now, now)
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", rec.Collection, rec.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert %s/%s: rows affected: %w", rec.Collection, rec.ID, err)
	}
	if affected == 0 {
		return &ConflictError{Collection: rec.Collection, ID: rec.ID}
	}

	if err := writeIndexEntries(ctx, tx, spec, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert %s/%s: commit: %w", rec.Collection, rec.ID, err)
	}
	return nil
}

// update rewrites a record's document and reindexes it.
func (s *Store) update(ctx context.Context, spec *schema.CollectionSpec, rec *record.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update %s/%s: begin tx: %w", rec.Collection, rec.ID, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE records SET data = ?, updated_at = ?
		WHERE collection = ? AND id = ?
	`, data, s.now().UnixMilli(), rec.Collection, rec.ID)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", rec.Collection, rec.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s/%s: rows affected: %w", rec.Collection, rec.ID, err)
	}
	if affected == 0 {
		return &NotFoundError{Collection: rec.Collection, ID: rec.ID}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM index_entries WHERE collection = ? AND record_id = ?
	`, rec.Collection, rec.ID); err != nil {
		return fmt.Errorf("update %s/%s: clear index: %w", rec.Collection, rec.ID, err)
	}
	if err := writeIndexEntries(ctx, tx, spec, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update %s/%s: commit: %w", rec.Collection, rec.ID, err)
	}
	return nil
}

// writeIndexEntries materializes the declared indexes for one record.
func writeIndexEntries(ctx context.Context, tx *sql.Tx, spec *schema.CollectionSpec, rec *record.Record) error {
	for _, field := range spec.Indexes {
		value, ok := indexValue(spec.Field(field), rec.Fields[field])
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO index_entries (collection, field, value, record_id)
			VALUES (?, ?, ?, ?)
		`, rec.Collection, field, value, rec.ID); err != nil {
			return fmt.Errorf("index %s/%s %s: %w", rec.Collection, rec.ID, field, err)
		}
	}
	return nil
}
