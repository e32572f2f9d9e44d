package data

import (
	"context"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/sirupsen/logrus"
)

const idIndex = "id"

var (
	_ EntityManager = (*MemEntityManager)(nil)
	_ Paginator     = (*MemEntityManager)(nil)
)

type notificationHolder interface {
	HasNotification(notificationID uint) bool
}

// MemEntityManager keeps entities in go-memdb, one table per model type.
// Related entities are not cascaded: every entity is persisted on its own,
// and an entity stores copies of its related entities as they were when it
// was flushed. Entities go in and come out as copies, so the caller never
// holds an object stored in memdb.
type MemEntityManager struct {
	transactionManager *MemTransactionManager
	tables             map[reflect.Type]string
	sequences          map[string]uint
	pending            pendingOperations
}

// NewMemEntityManager builds the schema from pointers to the model structs.
func NewMemEntityManager(models ...any) (*MemEntityManager, error) {
	schema := &memdb.DBSchema{Tables: make(map[string]*memdb.TableSchema)}
	tables := make(map[reflect.Type]string)
	for _, model := range models {
		idField(model)
		name := entityTypeName(model)
		tables[reflect.TypeOf(model)] = name
		schema.Tables[name] = &memdb.TableSchema{
			Name: name,
			Indexes: map[string]*memdb.IndexSchema{
				idIndex: {
					Name:    idIndex,
					Unique:  true,
					Indexer: &memdb.UintFieldIndex{Field: "ID"},
				},
			},
		}
	}
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, errors.Wrap(err, "memdb schema")
	}
	return &MemEntityManager{
		transactionManager: NewMemTransactionManager(db),
		tables:             tables,
		sequences:          make(map[string]uint),
	}, nil
}

// TransactionManager runs work in the write transaction Flush joins.
func (m *MemEntityManager) TransactionManager() TransactionManager {
	return m.transactionManager
}

func (m *MemEntityManager) table(entityType reflect.Type) string {
	name, ok := m.tables[entityType]
	if !ok {
		panic("MemEntityManager: unregistered entity type " + entityType.String())
	}
	return name
}

func (m *MemEntityManager) Persist(ctx context.Context, entity any) {
	logrus.Debugf("MemEntityManager.Persist: %s [%p]", entityTypeName(entity), entity)
	m.table(reflect.TypeOf(entity))
	m.pending.add(persistOperation, entity)
}

func (m *MemEntityManager) Remove(ctx context.Context, entity any) {
	logrus.Debugf("MemEntityManager.Remove: %s [%p]", entityTypeName(entity), entity)
	m.table(reflect.TypeOf(entity))
	m.pending.add(removeOperation, entity)
}

func (m *MemEntityManager) Pending() int {
	return m.pending.Len()
}

func (m *MemEntityManager) Flush(ctx context.Context) error {
	ops := m.pending.take()
	if len(ops) == 0 {
		return nil
	}
	flushID := uuid.New()
	unsaved := unsavedEntities(ops)
	now := time.Now().UTC()
	err := m.transactionManager.Do(ctx, func(ctx context.Context) error {
		txn := m.transactionManager.txn(ctx)
		// ids first, so an entity stored in this flush holds the ids of the
		// related entities persisted along with it
		for _, op := range ops {
			if op.kind == persistOperation {
				m.assignID(op.entity)
				touchTimestamps(op.entity, now)
			}
		}
		for _, op := range ops {
			table := m.table(reflect.TypeOf(op.entity))
			id, _ := findID(op.entity)
			logrus.Debugf("MemEntityManager.Flush: [%s] %s %s %d", flushID, op.kind, table, id)
			switch op.kind {
			case persistOperation:
				if err := txn.Insert(table, cloneEntity(op.entity)); err != nil {
					return errors.Wrapf(err, "persist %s %d", table, id)
				}
			case removeOperation:
				if err := txn.Delete(table, op.entity); err != nil {
					if errors.Is(err, memdb.ErrNotFound) {
						return errors.Wrapf(NotFoundError, "remove %s %d", table, id)
					}
					return errors.Wrapf(err, "remove %s %d", table, id)
				}
			}
		}
		return nil
	})
	if err != nil {
		resetIDs(unsaved)
		logrus.Warnf("MemEntityManager.Flush: [%s] rolled back: %v", flushID, err)
		return errors.Wrap(err, "flush")
	}
	logrus.Infof("MemEntityManager.Flush: [%s] committed %d operations", flushID, len(ops))
	return nil
}

// assignID gives an unsaved entity the next id of its table. Sequences only
// grow: ids handed out by a rolled back flush are not reused.
func (m *MemEntityManager) assignID(entity any) {
	table := m.table(reflect.TypeOf(entity))
	id, zero := findID(entity)
	if zero {
		m.sequences[table]++
		setID(entity, m.sequences[table])
		return
	}
	if id > m.sequences[table] {
		m.sequences[table] = id
	}
}

func (m *MemEntityManager) Find(ctx context.Context, dest any, id any) error {
	table := m.table(reflect.TypeOf(dest))
	found, err := m.transactionManager.txn(ctx).First(table, idIndex, id)
	if err != nil {
		return errors.Wrapf(err, "find %s %v", table, id)
	}
	if found == nil {
		return NotFoundError
	}
	structValue(dest).Set(structValue(cloneEntity(found)))
	return nil
}

func (m *MemEntityManager) FindAll(ctx context.Context, dest any) error {
	return m.collect(ctx, dest, 0, -1)
}

func (m *MemEntityManager) FindByNotification(ctx context.Context, dest any, notificationID uint) error {
	table := m.table(reflect.TypeOf(dest))
	it, err := m.transactionManager.txn(ctx).Get(table, idIndex)
	if err != nil {
		return errors.Wrapf(err, "scan %s", table)
	}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		holder, ok := obj.(notificationHolder)
		if !ok {
			return errors.Newf("%s does not hold notifications", table)
		}
		if holder.HasNotification(notificationID) {
			structValue(dest).Set(structValue(cloneEntity(obj)))
			return nil
		}
	}
	return NotFoundError
}

func (m *MemEntityManager) Paginate(ctx context.Context, dest any, page, limit int) (int64, error) {
	page, limit = normalizePage(page, limit)
	if err := m.collect(ctx, dest, (page-1)*limit, limit); err != nil {
		return 0, err
	}
	table := m.table(sliceElementType(dest))
	it, err := m.transactionManager.txn(ctx).Get(table, idIndex)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", table)
	}
	var total int64
	for obj := it.Next(); obj != nil; obj = it.Next() {
		total++
	}
	return total, nil
}

// collect copies up to limit entities, skipping offset, into the slice dest
// points to. A negative limit means no limit. The id index iterates in
// ascending id order.
func (m *MemEntityManager) collect(ctx context.Context, dest any, offset, limit int) error {
	elementType := sliceElementType(dest)
	table := m.table(elementType)
	it, err := m.transactionManager.txn(ctx).Get(table, idIndex)
	if err != nil {
		return errors.Wrapf(err, "scan %s", table)
	}
	slice := reflect.ValueOf(dest).Elem()
	slice.SetLen(0)
	index := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if index < offset {
			index++
			continue
		}
		if limit >= 0 && slice.Len() >= limit {
			break
		}
		slice.Set(reflect.Append(slice, reflect.ValueOf(cloneEntity(obj))))
		index++
	}
	return nil
}
