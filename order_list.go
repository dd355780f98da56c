package keysetpager

import "github.com/samber/lo"

// MaxOrderColumns caps the keyset ordering length. Each extra column adds a
// disjunct to the boundary predicate.
const MaxOrderColumns = 2

// OrderColumn is an ordering entry annotated with the column nullability.
type OrderColumn struct {
	OrderBy
	Nullable bool
}

// OrderList is a validated keyset ordering: one or two columns, the last one
// being the non-nullable primary key. The zero value is invalid; build it with
// NewOrderList.
type OrderList struct {
	columns []OrderColumn
}

// NewOrderList validates orderings against the table schema.
func NewOrderList(orderings Orderings, s Schema) (OrderList, error) {
	if err := orderings.validate(); err != nil {
		return OrderList{}, err
	}

	switch {
	case len(orderings) == 0:
		return OrderList{}, newValidationError("empty ordering list")
	case len(orderings) > MaxOrderColumns:
		return OrderList{}, newValidationError("ordering by %d columns, at most %d supported", len(orderings), MaxOrderColumns)
	}

	if s == nil {
		return OrderList{}, newValidationError("no schema to validate the ordering against")
	}

	pk := s.PrimaryKey()
	if pk == "" {
		return OrderList{}, newValidationError("table has no single-column primary key")
	}

	last := orderings[len(orderings)-1]
	if last.Column != pk {
		return OrderList{}, newValidationError("trailing ordering column '%s' is not the primary key '%s'", last.Column, pk)
	}

	if s.Nullable(pk) {
		return OrderList{}, newValidationError("primary key column '%s' is nullable", pk)
	}

	columns := lo.Map(orderings, func(item OrderBy, _ int) OrderColumn {
		return OrderColumn{OrderBy: item, Nullable: s.Nullable(item.Column)}
	})

	return OrderList{columns: columns}, nil
}

// Len returns the number of ordering columns.
func (l OrderList) Len() int {
	return len(l.columns)
}

// At returns the i-th ordering column.
func (l OrderList) At(i int) OrderColumn {
	return l.columns[i]
}

// PrimaryKey returns the trailing tie-breaker column.
func (l OrderList) PrimaryKey() OrderColumn {
	return l.columns[len(l.columns)-1]
}

// Columns returns the column names in ordering order.
func (l OrderList) Columns() []string {
	return lo.Map(l.columns, func(item OrderColumn, _ int) string { return item.Column })
}

// Orderings returns the plain ordering.
func (l OrderList) Orderings() Orderings {
	return lo.Map(l.columns, func(item OrderColumn, _ int) OrderBy { return item.OrderBy })
}

// OrderingCheck is the outcome of CheckOrdering: either SupportedOrdering or
// UnsupportedOrdering.
type OrderingCheck interface {
	orderingCheck()
}

// SupportedOrdering carries an ordering the keyset pager can serve.
type SupportedOrdering struct {
	List OrderList
}

// UnsupportedOrdering carries the reason the keyset pager refused the
// ordering. The legacy pager may still serve it.
type UnsupportedOrdering struct {
	Reason error
}

func (SupportedOrdering) orderingCheck()   {}
func (UnsupportedOrdering) orderingCheck() {}

// CheckOrdering decides which pager can serve the ordering.
func CheckOrdering(orderings Orderings, s Schema) OrderingCheck {
	list, err := NewOrderList(orderings, s)
	if err != nil {
		return UnsupportedOrdering{Reason: err}
	}

	return SupportedOrdering{List: list}
}
