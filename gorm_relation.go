package keysetpager

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

const dialectMySQL = "mysql"

// GORMRelation adapts a *gorm.DB query to Relation. The query should already
// carry its filters and table/model; ordering is owned by the relation.
//
// Nullable ordering columns are sorted NULLS LAST. MySQL has no NULLS LAST
// keyword, so the relation orders by "column IS NULL" first there.
type GORMRelation[T any] struct {
	db     *gorm.DB
	schema Schema
	sort   Orderings
	where  []Predicate
	limit  int
	tail   bool
}

// NewGORMRelation wraps db. s is used both for validation and to decide null
// placement in ORDER BY.
func NewGORMRelation[T any](db *gorm.DB, s Schema, orderBy ...OrderBy) *GORMRelation[T] {
	return &GORMRelation[T]{
		db:     db,
		schema: s,
		sort:   slices.Clone(orderBy),
		limit:  NoLimit,
	}
}

// NewGORMModelRelation wraps db for a gorm model type, parsing its schema.
// The returned getters read every model column.
func NewGORMModelRelation[T any](db *gorm.DB, orderBy ...OrderBy) (*GORMRelation[T], Getters[T], error) {
	s, err := ParseModelSchema(db, new(T))
	if err != nil {
		return nil, nil, err
	}

	return NewGORMRelation[T](db.Model(new(T)), s, orderBy...), ModelGetters[T](s), nil
}

func (r *GORMRelation[T]) Orderings() Orderings {
	return slices.Clone(r.sort)
}

func (r *GORMRelation[T]) Schema() Schema {
	return r.schema
}

func (r *GORMRelation[T]) OrderBy(orderBy ...OrderBy) Relation[T] {
	clone := r.clone()
	clone.sort = slices.Clone(orderBy)

	return clone
}

func (r *GORMRelation[T]) Where(p Predicate) Relation[T] {
	clone := r.clone()
	clone.where = append(clone.where, p)

	return clone
}

func (r *GORMRelation[T]) Head(n int) Relation[T] {
	clone := r.clone()
	clone.limit = n
	clone.tail = false

	return clone
}

func (r *GORMRelation[T]) Tail(n int) Relation[T] {
	clone := r.clone()
	clone.limit = n
	clone.tail = true

	return clone
}

// Find executes the query. A tail read runs in reversed order with the limit
// applied, and the rows are flipped back to natural order.
func (r *GORMRelation[T]) Find(ctx context.Context) ([]T, error) {
	tx := r.Query(ctx)

	var rows []T
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}

	if r.tail {
		rows = lo.Reverse(rows)
	}

	return rows, nil
}

// Query returns the gorm query Find would run, for callers that scan rows
// themselves.
func (r *GORMRelation[T]) Query(ctx context.Context) *gorm.DB {
	tx := r.db.WithContext(ctx)

	for _, p := range r.where {
		if expr := ToGORMExpression(p); expr != nil {
			tx = tx.Clauses(expr)
		}
	}

	if len(r.sort) > 0 {
		tx = tx.Order(r.orderSQL(tx.Dialector.Name()))
	}

	if r.limit != NoLimit {
		tx = tx.Limit(r.limit)
	}

	return tx
}

func (r *GORMRelation[T]) orderSQL(dialect string) string {
	parts := make([]string, 0, len(r.sort))
	for _, ordering := range r.sort {
		direction := lo.Ternary(r.tail, ordering.Direction.Reverse(), ordering.Direction)
		if r.schema == nil || !r.schema.Nullable(ordering.Column) {
			parts = append(parts, fmt.Sprintf("%s %s", ordering.Column, direction))
			continue
		}

		// Natural order keeps NULLs last; the reversed tail read puts them first.
		if dialect == dialectMySQL {
			parts = append(parts, fmt.Sprintf(
				"%s IS NULL%s, %s %s",
				ordering.Column, lo.Ternary(r.tail, " DESC", ""), ordering.Column, direction,
			))
		} else {
			parts = append(parts, fmt.Sprintf(
				"%s %s NULLS %s",
				ordering.Column, direction, lo.Ternary(r.tail, "FIRST", "LAST"),
			))
		}
	}

	return strings.Join(parts, ", ")
}

func (r *GORMRelation[T]) clone() *GORMRelation[T] {
	clone := *r
	clone.sort = slices.Clone(r.sort)
	clone.where = slices.Clone(r.where)

	return &clone
}

var _ Relation[struct{}] = (*GORMRelation[struct{}])(nil)
