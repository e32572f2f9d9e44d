package data

import "context"

// TransactionManager carries a transaction in the context. Do commits when f
// returns nil and rolls back otherwise; a Do inside another Do joins the
// outer transaction. Get returns the backend handle of ctx: a *gorm.DB or a
// *memdb.Txn.
type TransactionManager interface {
	Do(ctx context.Context, f func(ctx context.Context) error) error
	Get(ctx context.Context) any
}

var (
	_ TransactionManager = (*GormTransactionManager)(nil)
	_ TransactionManager = (*MemTransactionManager)(nil)
)
