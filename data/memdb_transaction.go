package data

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/sirupsen/logrus"
)

type MemTransactionManager struct {
	db *memdb.MemDB
}

func NewMemTransactionManager(db *memdb.MemDB) *MemTransactionManager {
	return &MemTransactionManager{db: db}
}

type memTransactionKey struct{}

type memTransaction struct {
	id  uuid.UUID
	txn *memdb.Txn
}

// Do runs f in a write transaction. memdb allows a single writer, so a nested
// Do joins the transaction already in ctx.
func (m *MemTransactionManager) Do(ctx context.Context, f func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTransactionKey{}).(*memTransaction); ok {
		return f(ctx)
	}

	tx := &memTransaction{id: uuid.New(), txn: m.db.Txn(true)}
	logrus.Debugf("MemTransactionManager.Do: transaction [%s]", tx.id)

	panicked := true
	defer func() {
		if panicked {
			tx.txn.Abort()
		}
	}()

	err := f(context.WithValue(ctx, memTransactionKey{}, tx))
	panicked = false

	if err != nil {
		tx.txn.Abort()
		return err
	}
	tx.txn.Commit()
	return nil
}

// Get returns the *memdb.Txn of ctx, or a fresh read transaction.
func (m *MemTransactionManager) Get(ctx context.Context) any {
	return m.txn(ctx)
}

func (m *MemTransactionManager) txn(ctx context.Context) *memdb.Txn {
	tx, ok := ctx.Value(memTransactionKey{}).(*memTransaction)
	if !ok {
		return m.db.Txn(false)
	}
	return tx.txn
}
