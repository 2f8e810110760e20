package club

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/store"
)

// Connection is the wire the client speaks to a record store over. The
// in-process implementation is Direct; a remote transport implements the
// same surface.
type Connection interface {
	IssueChallenge(ctx context.Context) (auth.Challenge, error)
	Create(ctx context.Context, collection string, args []any, signed auth.SignedChallenge) (*record.Record, error)
	Call(ctx context.Context, collection, id, function string, args []any, signed auth.SignedChallenge) (*record.Record, error)
	Delete(ctx context.Context, collection, id string, signed auth.SignedChallenge) error
	Get(ctx context.Context, collection, id string) (*record.Record, error)
	GetSigned(ctx context.Context, collection, id string, signed auth.SignedChallenge) (*record.Record, error)
	List(ctx context.Context, collection string) ([]*record.Record, error)
	Query(ctx context.Context, collection, field, op string, value any) ([]*record.Record, error)
	QuerySigned(ctx context.Context, collection, field, op string, value any, signed auth.SignedChallenge) ([]*record.Record, error)
}

// Direct is the in-process Connection backed by a *store.Store.
type Direct struct {
	Store *store.Store
}

// IssueChallenge implements Connection.
func (d Direct) IssueChallenge(ctx context.Context) (auth.Challenge, error) {
	return d.Store.IssueChallenge(), nil
}

// Create implements Connection.
func (d Direct) Create(ctx context.Context, collection string, args []any, signed auth.SignedChallenge) (*record.Record, error) {
	return d.Store.Create(ctx, collection, args, signed)
}

// Call implements Connection.
func (d Direct) Call(ctx context.Context, collection, id, function string, args []any, signed auth.SignedChallenge) (*record.Record, error) {
	return d.Store.Call(ctx, collection, id, function, args, signed)
}

// Delete implements Connection.
func (d Direct) Delete(ctx context.Context, collection, id string, signed auth.SignedChallenge) error {
	return d.Store.Delete(ctx, collection, id, signed)
}

// Get implements Connection.
func (d Direct) Get(ctx context.Context, collection, id string) (*record.Record, error) {
	return d.Store.Get(ctx, collection, id)
}

// GetSigned implements Connection.
func (d Direct) GetSigned(ctx context.Context, collection, id string, signed auth.SignedChallenge) (*record.Record, error) {
	return d.Store.GetSigned(ctx, collection, id, signed)
}

// List implements Connection.
func (d Direct) List(ctx context.Context, collection string) ([]*record.Record, error) {
	return d.Store.List(ctx, collection)
}

// Query implements Connection.
func (d Direct) Query(ctx context.Context, collection, field, op string, value any) ([]*record.Record, error) {
	return d.Store.Query(ctx, collection, field, op, value)
}

// QuerySigned implements Connection.
func (d Direct) QuerySigned(ctx context.Context, collection, field, op string, value any, signed auth.SignedChallenge) ([]*record.Record, error) {
	return d.Store.QuerySigned(ctx, collection, field, op, value, signed)
}

// TransportError wraps a failure between client and store. Timeout
// distinguishes "the store said no" from "the store never answered" -
// authorization and validation failures are never wrapped.
type TransportError struct {
	Op      string
	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("transport: %s: timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *TransportError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Timeout
}

// classifyTransport wraps infrastructure failures as TransportErrors and
// passes domain errors (denial, validation, not-found, conflict, bad
// challenge) through untouched.
func classifyTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &TransportError{Op: op, Timeout: true, Err: err}
	case errors.As(err, &netErr):
		return &TransportError{Op: op, Timeout: netErr.Timeout(), Err: err}
	default:
		return err
	}
}
