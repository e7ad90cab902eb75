// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// IsNotSupported reports whether err indicates the MongoDB deployment does
// not support multi-document transactions (standalone mongod, or a server
// rejecting session operations). Known server codes: 20 (IllegalOperation
// on standalone), 51, 263.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "illegal operation"):
		return true
	}
	return false
}

// Runner executes functions inside MongoDB multi-document transactions,
// degrading to plain execution on deployments that don't support them
// (standalone dev instances). Callers that must stay atomic on such
// deployments compensate on error themselves.
type Runner struct {
	client *mongo.Client
	log    *zap.Logger
}

// NewRunner creates a transaction Runner.
func NewRunner(client *mongo.Client, log *zap.Logger) *Runner {
	return &Runner{client: client, log: log}
}

// WithinTransaction runs fn in a transaction; stores invoked with the
// callback context participate automatically via the session context.
// When the deployment rejects transactions, fn runs once directly.
func (r *Runner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			r.log.Warn("mongo transactions unsupported; running without transaction")
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		r.log.Warn("mongo transactions unsupported; running without transaction")
		return fn(ctx)
	}
	return err
}
