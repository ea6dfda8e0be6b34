package services

import "context"

// TxRunner runs fn atomically when the database supports transactions.
// When Transactional reports false, fn runs without isolation and callers
// undo partial work themselves.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Transactional() bool
}

// DirectRunner runs fn without a transaction. Used when the deployment has no
// replica set and in tests.
type DirectRunner struct{}

func (DirectRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (DirectRunner) Transactional() bool {
	return false
}
