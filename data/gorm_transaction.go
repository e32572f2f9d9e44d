package data

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type GormTransactionManager struct {
	db *gorm.DB
}

func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

type gormTransactionKey struct{}

// Do runs f in a transaction. A ctx that already carries a transaction joins
// it, so the outermost Do decides commit or rollback.
func (g *GormTransactionManager) Do(ctx context.Context, f func(ctx context.Context) error) error {
	if _, ok := ctx.Value(gormTransactionKey{}).(*gorm.DB); ok {
		return f(ctx)
	}

	tx := g.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "begin transaction")
	}
	newCtx := context.WithValue(ctx, gormTransactionKey{}, tx)

	panicked := true
	defer func() {
		if panicked {
			tx.Rollback()
		}
	}()

	err := f(newCtx)
	panicked = false // if f is panicked, this statement is not executed.

	if err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

func (g *GormTransactionManager) Get(ctx context.Context) any {
	return g.session(ctx)
}

func (g *GormTransactionManager) session(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(gormTransactionKey{}).(*gorm.DB)
	if !ok {
		logrus.Debugf("GormTransactionManager.Get: no transaction session")
		tx = g.db.WithContext(ctx)
	}
	return tx
}
