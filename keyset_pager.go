package keysetpager

import (
	"context"
	"fmt"
)

// KeysetPager slices relations ordered by a validated OrderList. Boundaries
// are value comparisons against the last seen row, so concurrent writes
// elsewhere in the table never shift a cursor.
type KeysetPager[T any] struct {
	getters  Getters[T]
	maxLimit int
}

func NewKeysetPager[T any](getters Getters[T]) *KeysetPager[T] {
	return &KeysetPager[T]{
		getters:  getters,
		maxLimit: MaxLimit,
	}
}

// WithMaxLimit caps the page size.
func (p *KeysetPager[T]) WithMaxLimit(maxLimit int) *KeysetPager[T] {
	if p == nil {
		p = NewKeysetPager[T](nil)
	}

	p.maxLimit = maxLimit

	return p
}

// Paginate returns the page of rel described by args. rel is ordered by list
// regardless of its declared ordering.
//
//   - First=N keeps the N head rows following After (and preceding Before).
//   - Last=N keeps the N tail rows of the same slice, in natural order.
func (p *KeysetPager[T]) Paginate(ctx context.Context, rel Relation[T], list OrderList, args PageArgs) (*Page[T], error) {
	if p == nil {
		return nil, fmt.Errorf("keyset pager is nil")
	}

	if list.Len() == 0 {
		return nil, newValidationError("empty ordering list")
	}

	return fetchPage(ctx, pageRequest[T]{
		rel:      rel.OrderBy(list.Orderings()...),
		args:     args,
		maxLimit: p.maxLimit,
		slice: func(cursor Cursor, edge Edge) (Predicate, error) {
			return BuildSliceCondition(list, cursor, edge)
		},
		encode: func(row T) (string, error) {
			return EncodeCursor(row, list, p.getters)
		},
		strategy: StrategyKeyset,
	})
}
