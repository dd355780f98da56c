package keysetpager

import "context"

// Relation is a filtered, ordered set of rows the pager slices into pages.
// Implementations are immutable: every builder method returns a new relation
// and leaves the receiver untouched.
type Relation[T any] interface {
	// Orderings returns the declared natural order.
	Orderings() Orderings
	// Schema describes the underlying table.
	Schema() Schema
	// OrderBy replaces the declared natural order.
	OrderBy(orderBy ...OrderBy) Relation[T]
	// Where conjoins p onto the existing filter.
	Where(p Predicate) Relation[T]
	// Head keeps the first n rows in natural order.
	Head(n int) Relation[T]
	// Tail keeps the last n rows, still returned in natural order.
	Tail(n int) Relation[T]
	// Find executes the read and materializes the rows.
	Find(ctx context.Context) ([]T, error)
}
