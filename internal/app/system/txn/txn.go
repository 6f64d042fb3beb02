// Package txn runs multi-collection writes inside a MongoDB transaction
// when the server supports them, and falls back to sequential execution
// against standalone servers.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a multi-document transaction. If the deployment
// does not support transactions (standalone mongod), fn runs without a
// session and callers rely on conditional updates for consistency.
//
// Run is safe to nest: if ctx already carries a session, fn runs directly
// within it rather than starting a second transaction.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Debug("transactions unavailable, running without session", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Debug("transactions unavailable, running without session", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Sessioner adapts Run to an interface with a single WithTransaction
// method, so engine code can take transactions as a dependency.
type Sessioner struct {
	db  *mongo.Database
	log *zap.Logger
}

// NewSessioner returns a Sessioner bound to db.
func NewSessioner(db *mongo.Database, log *zap.Logger) *Sessioner {
	return &Sessioner{db: db, log: log}
}

// WithTransaction runs fn via Run.
func (s *Sessioner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, s.db, s.log, fn)
}

// IsNotSupported reports whether err indicates the server cannot run
// transactions, typically because it is a standalone deployment.
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
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "illegal operation"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	}
	return false
}
