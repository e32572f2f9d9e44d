package data

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const notificationsAssociation = "Notifications"

var (
	_ EntityManager = (*GormEntityManager)(nil)
	_ Paginator     = (*GormEntityManager)(nil)
)

type GormEntityManager struct {
	transactionManager *GormTransactionManager
	pending            pendingOperations
}

func NewGormEntityManager(transactionManager *GormTransactionManager) *GormEntityManager {
	return &GormEntityManager{transactionManager: transactionManager}
}

// TransactionManager runs work in the transaction Flush joins.
func (m *GormEntityManager) TransactionManager() TransactionManager {
	return m.transactionManager
}

func (m *GormEntityManager) Persist(ctx context.Context, entity any) {
	logrus.Debugf("GormEntityManager.Persist: %s [%p]", entityTypeName(entity), entity)
	m.pending.add(persistOperation, entity)
}

func (m *GormEntityManager) Remove(ctx context.Context, entity any) {
	logrus.Debugf("GormEntityManager.Remove: %s [%p]", entityTypeName(entity), entity)
	m.pending.add(removeOperation, entity)
}

func (m *GormEntityManager) Pending() int {
	return m.pending.Len()
}

func (m *GormEntityManager) Flush(ctx context.Context) error {
	ops := m.pending.take()
	if len(ops) == 0 {
		return nil
	}
	flushID := uuid.New()
	unsaved := unsavedEntities(ops)
	err := m.transactionManager.Do(ctx, func(ctx context.Context) error {
		db := m.transactionManager.session(ctx)
		for _, op := range ops {
			logrus.Debugf("GormEntityManager.Flush: [%s] %s %s", flushID, op.kind, entityTypeName(op.entity))
			var err error
			switch op.kind {
			case persistOperation:
				err = db.Save(op.entity).Error
			case removeOperation:
				err = db.Select(clause.Associations).Delete(op.entity).Error
			}
			if err != nil {
				return errors.Wrapf(err, "%s %s", op.kind, entityTypeName(op.entity))
			}
		}
		return nil
	})
	if err != nil {
		resetIDs(unsaved)
		logrus.Warnf("GormEntityManager.Flush: [%s] rolled back: %v", flushID, err)
		return errors.Wrap(err, "flush")
	}
	logrus.Infof("GormEntityManager.Flush: [%s] committed %d operations", flushID, len(ops))
	return nil
}

func (m *GormEntityManager) Find(ctx context.Context, dest any, id any) error {
	db := m.transactionManager.session(ctx)
	if err := db.Preload(clause.Associations).First(dest, "id = ?", id).Error; err != nil {
		return mapGormError(err)
	}
	return nil
}

func (m *GormEntityManager) FindAll(ctx context.Context, dest any) error {
	db := m.transactionManager.session(ctx)
	if err := db.Preload(clause.Associations).Order("id").Find(dest).Error; err != nil {
		return mapGormError(err)
	}
	return nil
}

// FindByNotification loads the owner of a notification through the
// many-to-many join table of dest's Notifications association.
func (m *GormEntityManager) FindByNotification(ctx context.Context, dest any, notificationID uint) error {
	db := m.transactionManager.session(ctx)

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(dest); err != nil {
		return errors.Wrapf(err, "parse %s", entityTypeName(dest))
	}
	relation, ok := stmt.Schema.Relationships.Relations[notificationsAssociation]
	if !ok || relation.JoinTable == nil {
		return errors.Newf("%s has no many-to-many %s association", stmt.Schema.Name, notificationsAssociation)
	}
	var ownerKey, notificationKey string
	for _, reference := range relation.References {
		if reference.OwnPrimaryKey {
			ownerKey = reference.ForeignKey.DBName
		} else {
			notificationKey = reference.ForeignKey.DBName
		}
	}
	logrus.Debugf("GormEntityManager.FindByNotification: join table [%s] owner [%s] notification [%s:%d]",
		relation.JoinTable.Table, ownerKey, notificationKey, notificationID)

	owners := db.Table(relation.JoinTable.Table).
		Select(ownerKey).
		Where(fmt.Sprintf("%s = ?", notificationKey), notificationID)
	if err := db.Preload(clause.Associations).Where("id IN (?)", owners).First(dest).Error; err != nil {
		return mapGormError(err)
	}
	return nil
}

func (m *GormEntityManager) Paginate(ctx context.Context, dest any, page, limit int) (int64, error) {
	page, limit = normalizePage(page, limit)
	db := m.transactionManager.session(ctx)

	var total int64
	if err := db.Model(dest).Count(&total).Error; err != nil {
		return 0, errors.Wrapf(err, "count %s", entityTypeName(dest))
	}
	if err := db.Preload(clause.Associations).Order("id").Offset((page - 1) * limit).Limit(limit).Find(dest).Error; err != nil {
		return 0, mapGormError(err)
	}
	return total, nil
}

func mapGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError
	}
	return err
}
