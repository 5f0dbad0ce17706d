// internal/app/system/txn/txn.go

// Package txn wraps multi-document writes in a MongoDB transaction when
// the deployment supports one. Standalone servers (no replica set) do
// not; callers detect that with IsNotSupported and fall back to an
// bulk write, which is the closest single-round-trip equivalent.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTransaction runs fn inside a multi-document transaction. The
// context passed to fn carries the session; all writes made through it
// commit atomically or not at all.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Transaction-unsupported server error codes.
const (
	codeIllegalOperation      = 20
	codeCommandNotSupported   = 51
	codeOperationNotSupported = 263
)

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (standalone deployment, old server, or a
// DocumentDB-style emulation). Matching is best-effort across vendors.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupported:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "transaction") && !strings.Contains(msg, "session") {
		return false
	}
	if strings.Contains(msg, "replica set") ||
		strings.Contains(msg, "not supported") ||
		strings.Contains(msg, "illegal operation") {
		return true
	}
	return strings.Contains(msg, "transaction") && strings.Contains(msg, "session")
}
