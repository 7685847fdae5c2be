package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx runs fn in a transaction. Repositories called with the ctx passed
	// to fn join that transaction. A non-nil return rolls back.
	ExecTx(ctx context.Context, fn TxFn) error
}
