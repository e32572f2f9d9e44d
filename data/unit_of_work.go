package data

import "context"

// UnitOfWork collects changes and writes them in one transaction on Flush.
// Flush commits every pending change, not only the last one persisted.
// A unit of work is meant for one request and is not safe for concurrent use.
type UnitOfWork interface {
	Persist(ctx context.Context, entity any)
	Remove(ctx context.Context, entity any)
	Flush(ctx context.Context) error
}

// Finder loads entities into caller supplied destinations.
// dest is a pointer to a struct for Find and FindByNotification, and a
// pointer to a slice for FindAll. NotFoundError reports a missing record.
type Finder interface {
	Find(ctx context.Context, dest any, id any) error
	FindAll(ctx context.Context, dest any) error
	FindByNotification(ctx context.Context, dest any, notificationID uint) error
}

type EntityManager interface {
	UnitOfWork
	Finder
}

type operationKind int

const (
	persistOperation operationKind = iota + 1
	removeOperation
)

func (k operationKind) String() string {
	switch k {
	case persistOperation:
		return "persist"
	case removeOperation:
		return "remove"
	default:
		return "unknown"
	}
}

type operation struct {
	kind   operationKind
	entity any
}

type pendingOperations []operation

func (p *pendingOperations) add(kind operationKind, entity any) {
	*p = append(*p, operation{kind: kind, entity: entity})
}

// take empties the queue; a failed flush does not keep its operations.
func (p *pendingOperations) take() []operation {
	ops := *p
	*p = nil
	return ops
}

func (p *pendingOperations) Len() int {
	return len(*p)
}

// unsavedEntities returns the persisted entities that have no id yet.
func unsavedEntities(ops []operation) []any {
	var unsaved []any
	for _, op := range ops {
		if op.kind != persistOperation {
			continue
		}
		if _, zero := findID(op.entity); zero {
			unsaved = append(unsaved, op.entity)
		}
	}
	return unsaved
}

// resetIDs clears the ids a rolled back flush assigned, so that persisting
// the entities again inserts them instead of updating someone else's row.
func resetIDs(entities []any) {
	for _, entity := range entities {
		setID(entity, 0)
	}
}
