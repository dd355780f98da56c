package keysetpager

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// _placeholder matches a bound parameter for both MySQL and Postgres.
const _placeholder = `(?:\$\d+|\?)`

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db.Debug(), mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db.Debug(), mock, nil
}

// sqlPattern turns a readable query into a regexp: "?" becomes a placeholder
// for either dialect, "`users`" accepts any identifier quote, and parentheses
// are escaped.
func sqlPattern(query string) string {
	replacer := strings.NewReplacer(
		"(", `\(`,
		")", `\)`,
		"*", `\*`,
		"?", _placeholder,
		"`", "[`'\"]",
	)

	return "^" + replacer.Replace(query) + "$"
}

type tRow struct {
	ID  int
	Col *string
}

func (r tRow) String() string {
	if r.Col == nil {
		return fmt.Sprintf("(null,%d)", r.ID)
	}

	return fmt.Sprintf("(%s,%d)", *r.Col, r.ID)
}

var tRowGetters = Getters[tRow]{
	"id":  func(r tRow) any { return r.ID },
	"col": func(r tRow) any { return r.Col },
}

var tRowSchema = StaticSchema{PK: "id", NullableColumns: []string{"col"}}

func row(col string, id int) tRow {
	if col == "" {
		return tRow{ID: id}
	}

	return tRow{ID: id, Col: lo.ToPtr(col)}
}

// memRelation is an in-memory Relation. It sorts NULLS LAST, evaluates
// predicates with SQL NULL semantics and takes the literal tail for Tail.
type memRelation struct {
	rows   []tRow
	schema Schema
	sort   Orderings
	where  []Predicate
	limit  int
	tail   bool
	err    error
	finds  *int
}

func newMemRelation(rows []tRow, orderBy ...OrderBy) *memRelation {
	return &memRelation{
		rows:   rows,
		schema: tRowSchema,
		sort:   orderBy,
		limit:  NoLimit,
		finds:  new(int),
	}
}

func (r *memRelation) clone() *memRelation {
	clone := *r
	clone.sort = slices.Clone(r.sort)
	clone.where = slices.Clone(r.where)

	return &clone
}

func (r *memRelation) Orderings() Orderings { return slices.Clone(r.sort) }
func (r *memRelation) Schema() Schema       { return r.schema }

func (r *memRelation) OrderBy(orderBy ...OrderBy) Relation[tRow] {
	clone := r.clone()
	clone.sort = slices.Clone(orderBy)
	return clone
}

func (r *memRelation) Where(p Predicate) Relation[tRow] {
	clone := r.clone()
	clone.where = append(clone.where, p)
	return clone
}

func (r *memRelation) Head(n int) Relation[tRow] {
	clone := r.clone()
	clone.limit, clone.tail = n, false
	return clone
}

func (r *memRelation) Tail(n int) Relation[tRow] {
	clone := r.clone()
	clone.limit, clone.tail = n, true
	return clone
}

func (r *memRelation) Find(_ context.Context) ([]tRow, error) {
	*r.finds++
	if r.err != nil {
		return nil, r.err
	}

	rows := lo.Filter(r.rows, func(item tRow, _ int) bool {
		return lo.EveryBy(r.where, func(p Predicate) bool { return evalPredicate(p, item) })
	})

	sort.SliceStable(rows, func(i, j int) bool {
		return compareRows(rows[i], rows[j], r.sort) < 0
	})

	if r.limit != NoLimit && len(rows) > r.limit {
		rows = lo.Ternary(r.tail, rows[len(rows)-r.limit:], rows[:r.limit])
	}

	return slices.Clone(rows), nil
}

func columnValue(r tRow, column string) (string, bool) {
	getter, ok := tRowGetters[column]
	if !ok {
		return "", true
	}

	value, err := stringifyValue(getter(r))
	if err != nil {
		panic(err)
	}
	if value == nil {
		return "", true
	}

	return *value, false
}

func compareValues(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai - bi
	}

	return strings.Compare(a, b)
}

func compareRows(a, b tRow, orderings Orderings) int {
	for _, ordering := range orderings {
		av, aNull := columnValue(a, ordering.Column)
		bv, bNull := columnValue(b, ordering.Column)

		switch {
		case aNull && bNull:
			continue
		case aNull:
			return 1
		case bNull:
			return -1
		}

		cmp := compareValues(av, bv)
		if ordering.Direction == DirectionDESC {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp
		}
	}

	return 0
}

func evalPredicate(p Predicate, r tRow) bool {
	switch pt := p.(type) {
	case Comparison:
		value, null := columnValue(r, pt.Column)
		if null {
			return false
		}

		cmp := compareValues(value, fmt.Sprint(pt.Value))
		switch pt.Operator {
		case OperatorGT:
			return cmp > 0
		case OperatorLT:
			return cmp < 0
		case OperatorEQ:
			return cmp == 0
		}
	case NullCheck:
		_, null := columnValue(r, pt.Column)
		return null != pt.Negate
	case And:
		return lo.EveryBy(pt, func(item Predicate) bool { return evalPredicate(item, r) })
	case Or:
		return lo.SomeBy(pt, func(item Predicate) bool { return evalPredicate(item, r) })
	}

	panic(fmt.Errorf("unexpected predicate %T", p))
}

var _ Relation[tRow] = (*memRelation)(nil)
