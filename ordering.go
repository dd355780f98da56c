package keysetpager

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
)

// Direction defines the sort direction for the requested dataset.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

// Reverse returns the opposite direction.
func (o Direction) Reverse() Direction {
	switch o {
	case DirectionASC:
		return DirectionDESC
	case DirectionDESC:
		return DirectionASC
	default:
		panic(fmt.Errorf("cannot reverse direction '%s'", o))
	}
}

// Edge is the side of a cursor a page is requested from.
type Edge int

const (
	// EdgeAfter selects rows that follow the cursor (forward paging).
	EdgeAfter Edge = iota
	// EdgeBefore selects rows that precede the cursor (backward paging).
	EdgeBefore
)

func (e Edge) String() string {
	switch e {
	case EdgeAfter:
		return "after"
	case EdgeBefore:
		return "before"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}

type (
	Orderings []OrderBy
	OrderBy   struct {
		Column    string
		Direction Direction
	}

	ColumnAlias = string

	// ColumnMapping maps external column aliases to fully qualified column names.
	// Use it when bare column names could cause an "ambiguous column name" error.
	// Key is an external alias, value is an internal column name.
	ColumnMapping = map[ColumnAlias]string
)

var _availableColumnNameSymbols = append([]rune("_.'`\""), lo.AlphanumericCharset...)

// OperatorFor returns the strict comparison that selects rows lying on the
// given edge of a boundary value in this ordering:
//
//	ASC  + after  → >
//	ASC  + before → <
//	DESC + after  → <
//	DESC + before → >
func (o OrderBy) OperatorFor(edge Edge) Operator {
	op := lo.Ternary(o.Direction == DirectionDESC, OperatorLT, OperatorGT)
	if edge == EdgeBefore {
		return op.Inverse()
	}

	return op
}

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return newValidationError("invalid ordering direction '%s'", o.Direction)
	}

	// Guard against SQL injection by restricting allowed characters in column names.
	if o.Column == "" || !lo.Every(_availableColumnNameSymbols, []rune(o.Column)) {
		return newValidationError("ordering column name contains forbidden symbols '%s'", o.Column)
	}

	return nil
}

// Columns returns the ordered column names.
func (o Orderings) Columns() []string {
	return lo.Map(o, func(item OrderBy, _ int) string { return item.Column })
}

// Reverse returns the orderings with every direction flipped.
func (o Orderings) Reverse() Orderings {
	return lo.Map(o, func(item OrderBy, _ int) OrderBy {
		return OrderBy{Column: item.Column, Direction: item.Direction.Reverse()}
	})
}

// ToSQLSlice converts Orderings to a slice of strings in the form
// "<order_column> <order_direction>" suitable for SQL query builders.
//
// Example: for Orderings: [{"a", "ASC"}, {"b", "DESC"}] returns ["a ASC", "b DESC"].
func (o Orderings) ToSQLSlice() []string {
	ret := make([]string, 0, len(o))
	for _, ordering := range o {
		ret = append(ret, fmt.Sprintf("%s %s", ordering.Column, ordering.Direction))
	}

	return ret
}

// ToSQL converts Orderings to a single string
// "<order_column_1> <order_direction_1>, <order_column_2> <order_direction_2>"
// suitable for embedding into an SQL query. Null placement is left to the
// database; use GORMRelation to get NULLS LAST rendering.
func (o Orderings) ToSQL() string {
	return strings.Join(o.ToSQLSlice(), ", ")
}

// validate checks syntax only: an empty list is valid here because the
// legacy pager falls back to the primary key.
func (o Orderings) validate() error {
	seen := make(map[string]struct{}, len(o))
	for _, ordering := range o {
		if err := ordering.validate(); err != nil {
			return err
		}

		if _, ok := seen[ordering.Column]; ok {
			return newValidationError("duplicate ordering column '%s'", ordering.Column)
		}
		seen[ordering.Column] = struct{}{}
	}

	return nil
}

// ParseSort builds Orderings from a list of strings in the format
// "column asc|desc". Column aliases are resolved via ColumnMapping.
// Returns an error if an alias is not found in the mapping.
func ParseSort(stringsOrderings []string, columnMapping ColumnMapping) (Orderings, error) {
	ret := make([]OrderBy, 0, len(stringsOrderings))
	aliases := lo.Keys(columnMapping)

	for _, stringOrdering := range stringsOrderings {
		cutStringOrdering := strings.Fields(stringOrdering)
		if len(cutStringOrdering) != 2 {
			return nil, newValidationError("invalid ordering string format '%s'", stringOrdering)
		}

		columnAlias := cutStringOrdering[0]
		direction := Direction(strings.ToUpper(cutStringOrdering[1]))
		columnName := columnMapping[columnAlias]
		if columnName == "" {
			return nil, newValidationError("invalid column alias. closest: '%s'", closestAlias(columnAlias, aliases))
		}

		orderBy := OrderBy{
			Column:    columnName,
			Direction: direction,
		}
		if err := orderBy.validate(); err != nil {
			return nil, err
		}

		ret = append(ret, orderBy)
	}

	return ret, nil
}

func closestAlias(input ColumnAlias, dataSet []ColumnAlias) ColumnAlias {
	minDist := math.MaxInt
	closest := ""

	for _, dataSetAlias := range dataSet {
		dist := levenshtein([]rune(dataSetAlias), []rune(input))
		if dist < minDist || (dist == minDist && dataSetAlias < closest) {
			minDist = dist
			closest = dataSetAlias
		}
	}

	return closest
}
