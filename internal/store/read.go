package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/authz"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
)

// queryOps maps the supported query operators to SQL. Values compare as
// TEXT against the materialized index entries.
var queryOps = map[string]string{
	"==": "=",
	"!=": "!=",
	"<":  "<",
	"<=": "<=",
	">":  ">",
	">=": ">=",
}

// Get returns a record by id. Collections with a read rule reject
// anonymous reads; use GetSigned for those.
func (s *Store) Get(ctx context.Context, collection, id string) (*record.Record, error) {
	spec, err := s.registry.Collection(collection)
	if err != nil {
		return nil, err
	}
	if spec.Read != nil {
		return nil, &authz.DeniedError{Collection: collection, Function: "read", Reason: "collection requires a signed read"}
	}
	return s.get(ctx, collection, id)
}

// GetSigned returns a record by id after evaluating the collection's
// read rule for the recovered caller. The nonce is consumed like any
// mutation's: one signed envelope, one operation.
func (s *Store) GetSigned(ctx context.Context, collection, id string, signed auth.SignedChallenge) (*record.Record, error) {
	spec, err := s.registry.Collection(collection)
	if err != nil {
		return nil, err
	}

	caller, err := s.authenticate(signed)
	if err != nil {
		return nil, err
	}

	rec, err := s.get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	if spec.Read != nil {
		if err := s.checkRead(ctx, spec, caller, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Query returns records whose indexed field matches (op, value), ordered
// by record id. Collections with a read rule reject anonymous queries.
func (s *Store) Query(ctx context.Context, collection, field, op string, value any) ([]*record.Record, error) {
	spec, err := s.registry.Collection(collection)
	if err != nil {
		return nil, err
	}
	if spec.Read != nil {
		return nil, &authz.DeniedError{Collection: collection, Function: "read", Reason: "collection requires a signed read"}
	}
	return s.query(ctx, spec, field, op, value)
}

// QuerySigned queries a read-restricted collection. Records the caller
// may not read are filtered out rather than failing the whole query.
func (s *Store) QuerySigned(ctx context.Context, collection, field, op string, value any, signed auth.SignedChallenge) ([]*record.Record, error) {
	spec, err := s.registry.Collection(collection)
	if err != nil {
		return nil, err
	}

	caller, err := s.authenticate(signed)
	if err != nil {
		return nil, err
	}

	recs, err := s.query(ctx, spec, field, op, value)
	if err != nil {
		return nil, err
	}
	if spec.Read == nil {
		return recs, nil
	}

	visible := recs[:0]
	for _, rec := range recs {
		if err := s.checkRead(ctx, spec, caller, rec); err != nil {
			if authz.IsDenied(err) {
				continue
			}
			return nil, err
		}
		visible = append(visible, rec)
	}
	return visible, nil
}

// List returns every record in a collection, ordered by id. Collections
// with a read rule reject anonymous listing.
func (s *Store) List(ctx context.Context, collection string) ([]*record.Record, error) {
	spec, err := s.registry.Collection(collection)
	if err != nil {
		return nil, err
	}
	if spec.Read != nil {
		return nil, &authz.DeniedError{Collection: collection, Function: "read", Reason: "collection requires a signed read"}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data FROM records
		WHERE collection = ?
		ORDER BY id ASC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var recs []*record.Record
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("list %s: scan: %w", collection, err)
		}
		rec, err := decodeRecord(collection, id, data)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return recs, nil
}

// get loads one record or returns NotFoundError.
func (s *Store) get(ctx context.Context, collection, id string) (*record.Record, error) {
	rec, err := s.fetch(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	return rec, nil
}

// fetch loads one record, returning (nil, nil) when it does not exist.
// This is the resolver's contract: dangling references are "no value".
func (s *Store) fetch(ctx context.Context, collection, id string) (*record.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM records
		WHERE collection = ? AND id = ?
	`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", collection, id, err)
	}
	return decodeRecord(collection, id, data)
}

func (s *Store) query(ctx context.Context, spec *schema.CollectionSpec, field, op string, value any) ([]*record.Record, error) {
	if !spec.Indexed(field) {
		return nil, &schema.ValidationError{Collection: spec.Name, Arg: field, Message: "field is not indexed"}
	}
	sqlOp, ok := queryOps[op]
	if !ok {
		return nil, &schema.ValidationError{Collection: spec.Name, Arg: field, Message: fmt.Sprintf("unsupported operator %q", op)}
	}
	qv, err := queryValue(value)
	if err != nil {
		return nil, &schema.ValidationError{Collection: spec.Name, Arg: field, Message: err.Error()}
	}

	// Ordering by record id keeps results deterministic across runs.
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT r.id, r.data
		FROM index_entries e
		JOIN records r ON r.collection = e.collection AND r.id = e.record_id
		WHERE e.collection = ? AND e.field = ? AND e.value %s ?
		ORDER BY r.id ASC
	`, sqlOp), spec.Name, field, qv)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", spec.Name, field, err)
	}
	defer rows.Close()

	var recs []*record.Record
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("query %s.%s: scan: %w", spec.Name, field, err)
		}
		rec, err := decodeRecord(spec.Name, id, data)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", spec.Name, field, err)
	}
	return recs, nil
}

// checkRead evaluates the collection's read rule for one record.
func (s *Store) checkRead(ctx context.Context, spec *schema.CollectionSpec, caller string, rec *record.Record) error {
	eval := authz.NewEvaluator(s.resolver(ctx))
	decision, err := eval.Can(spec.Read.Rule, caller, rec, nil)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &authz.DeniedError{Collection: spec.Name, Function: "read", Reason: decision.Reason}
	}
	return nil
}
