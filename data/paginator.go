package data

import "context"

const DefaultPageLimit = 10

// Paginator fills the slice dest points to with one page of entities ordered
// by id and returns the total number of entities.
type Paginator interface {
	Paginate(ctx context.Context, dest any, page, limit int) (int64, error)
}

type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int64
}

func (p Page[T]) PageCount() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

func (p Page[T]) HasNext() bool {
	return p.Page < p.PageCount()
}

func Paginate[T any](ctx context.Context, paginator Paginator, page, limit int) (Page[T], error) {
	page, limit = normalizePage(page, limit)
	var items []T
	total, err := paginator.Paginate(ctx, &items, page, limit)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Page: page, Limit: limit, Total: total}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return page, limit
}
