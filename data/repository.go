package data

import "context"

type Repository[T any, ID comparable] interface {
	FindOne(ctx context.Context, id ID) (T, error)
	FindAll(ctx context.Context) ([]T, error)
}

type NotificationRepository[T any] interface {
	FindByNotification(ctx context.Context, notificationID uint) (T, error)
}

// EntityRepository is the typed read side of an entity manager.
type EntityRepository[T any, ID comparable] interface {
	Repository[T, ID]
	NotificationRepository[T]
}

// FinderRepository is the typed view of a Finder for one entity type.
// T must be a pointer to a struct.
type FinderRepository[T any, ID comparable] struct {
	finder Finder
}

func NewRepository[T any, ID comparable](finder Finder) EntityRepository[T, ID] {
	return &FinderRepository[T, ID]{finder: finder}
}

func (r *FinderRepository[T, ID]) FindOne(ctx context.Context, id ID) (T, error) {
	entity := newEntity[T]()
	if err := r.finder.Find(ctx, entity, id); err != nil {
		var zero T
		return zero, err
	}
	return entity, nil
}

func (r *FinderRepository[T, ID]) FindAll(ctx context.Context) ([]T, error) {
	var entities []T
	if err := r.finder.FindAll(ctx, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *FinderRepository[T, ID]) FindByNotification(ctx context.Context, notificationID uint) (T, error) {
	entity := newEntity[T]()
	if err := r.finder.FindByNotification(ctx, entity, notificationID); err != nil {
		var zero T
		return zero, err
	}
	return entity, nil
}
