package keysetpager

import (
	"context"
	"fmt"
)

// LegacyPager serves orderings the keyset pager rejects. It seeks on the first
// ordering column only, which is exact when that column is unique, and has no
// NULL handling: a nullable seek column is rejected up front, and a boundary
// row with a NULL sort value cannot be seeked past.
type LegacyPager[T any] struct {
	getters  Getters[T]
	maxLimit int
}

func NewLegacyPager[T any](getters Getters[T]) *LegacyPager[T] {
	return &LegacyPager[T]{
		getters:  getters,
		maxLimit: MaxLimit,
	}
}

// WithMaxLimit caps the page size.
func (p *LegacyPager[T]) WithMaxLimit(maxLimit int) *LegacyPager[T] {
	if p == nil {
		p = NewLegacyPager[T](nil)
	}

	p.maxLimit = maxLimit

	return p
}

// Paginate returns the page of rel described by args. Without a declared
// ordering, rel is ordered by its primary key ascending.
func (p *LegacyPager[T]) Paginate(ctx context.Context, rel Relation[T], args PageArgs) (*Page[T], error) {
	if p == nil {
		return nil, fmt.Errorf("legacy pager is nil")
	}

	orderings := rel.Orderings()
	if err := orderings.validate(); err != nil {
		return nil, err
	}

	if len(orderings) == 0 {
		pk := ""
		if s := rel.Schema(); s != nil {
			pk = s.PrimaryKey()
		}
		if pk == "" {
			return nil, newValidationError("no ordering declared and no primary key to default to")
		}

		orderings = Orderings{{Column: pk, Direction: DirectionASC}}
		rel = rel.OrderBy(orderings...)
	}

	column := orderings[0]

	// NULLs sort after every value, so "col > v" can never reach them.
	if s := rel.Schema(); s != nil && s.Nullable(column.Column) {
		return nil, newValidationError("legacy pager cannot seek on nullable column '%s'", column.Column)
	}

	return fetchPage(ctx, pageRequest[T]{
		rel:      rel,
		args:     args,
		maxLimit: p.maxLimit,
		slice: func(cursor Cursor, edge Edge) (Predicate, error) {
			value, ok := cursor.Value(column.Column)
			if !ok || value.Null {
				return nil, &CursorError{
					Token: cursor.String(),
					Err:   fmt.Errorf("cursor has no value for ordering column '%s'", column.Column),
				}
			}

			return Comparison{Column: column.Column, Operator: column.OperatorFor(edge), Value: value.Value}, nil
		},
		encode: func(row T) (string, error) {
			cursor, err := cursorFromRow(row, []string{column.Column}, p.getters)
			if err != nil {
				return "", err
			}

			return cursor.String(), nil
		},
		strategy: StrategyLegacy,
	})
}
