package memory

import "context"

// TxManager satisfies repository.TransactionManager for the in-memory stores.
// Memory appends cannot fail, and per-record locking in RequestStore already
// serializes conflicting writers, so the unit of work is just the function
// itself.
type TxManager struct{}

func NewTxManager() TxManager {
	return TxManager{}
}

func (TxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
