// Package graph wraps the official Neo4j driver behind a small query
// executor with a bounded retry policy for transient connectivity failures.
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/isdamarket/fish_market/internal/config"
)

// ErrNotFound is returned by lookups when no node matches.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable is returned after the retry budget for transient store
// failures is exhausted.
var ErrUnavailable = errors.New("graph store unavailable")

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Runner executes a single Cypher statement and returns a fully-buffered
// result. It is the seam used to mock the store in tests.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error)
}

// TxRunner additionally exposes an explicit write transaction, for
// multi-statement units that must commit or fail as a whole.
type TxRunner interface {
	Runner
	ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error)
}

type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

func New(cfg *config.Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.NEO4J_URI, neo4j.BasicAuth(cfg.NEO4J_USER, cfg.NEO4J_PASSWORD, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}
	return &Store{driver: driver, database: cfg.NEO4J_DATABASE}, nil
}

func (s *Store) Verify(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Run executes one Cypher statement with automatic session handling and
// buffers the whole result.
func (s *Store) Run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		s.driver,
		cypher,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		return nil, fmt.Errorf("neo4j query: %w", err)
	}
	return result, nil
}

// ExecuteWrite runs work inside a single managed write transaction.
func (s *Store) ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, work)
}

// ReadWithRetry runs a read statement, retrying transient failures with a
// linear backoff (0.5s * attempt). Non-transient errors propagate
// immediately; an exhausted budget surfaces ErrUnavailable. Write paths must
// not go through here.
func ReadWithRetry(ctx context.Context, r Runner, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := r.Run(ctx, cypher, params)
		if err == nil {
			return result, nil
		}
		if !Transient(err) {
			return nil, err
		}
		last = err
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, last)
}

// Transient reports whether err is in the service-unavailable class worth
// retrying: connection loss or a Neo.TransientError server code.
func Transient(err error) bool {
	if neo4j.IsConnectivityError(err) {
		return true
	}
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		return strings.HasPrefix(neoErr.Code, "Neo.TransientError")
	}
	return false
}
