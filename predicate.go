package keysetpager

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

// Predicate is a boolean expression over row columns. The set of node types
// is closed: Comparison, NullCheck, And, Or.
type Predicate interface {
	// toGORMExpression renders the node as a gorm clause expression.
	toGORMExpression() clause.Expression
	// writeSQL appends the node to sb using "?" placeholders.
	writeSQL(sb *strings.Builder, vars []driver.Value) []driver.Value
}

type (
	// Comparison is "Column Operator Value".
	Comparison struct {
		Column   string
		Operator Operator
		Value    any
	}

	// NullCheck is "Column IS NULL", or "Column IS NOT NULL" when Negate is set.
	NullCheck struct {
		Column string
		Negate bool
	}

	// And joins its operands with AND.
	And []Predicate

	// Or joins its operands with OR.
	Or []Predicate
)

// ToGORMExpression converts a predicate into a gorm clause expression. A nil
// predicate, or an operator node without operands, yields nil.
func ToGORMExpression(p Predicate) clause.Expression {
	if p == nil {
		return nil
	}

	return p.toGORMExpression()
}

// ToSQL converts a predicate into an SQL condition with "?" placeholders.
// Returns the SQL string and the values for the placeholders.
//
// Usage:
//
//	where, args := keysetpager.ToSQL(p)
//	query := fmt.Sprintf("SELECT * FROM table WHERE %s", where)
func ToSQL(p Predicate) (string, []driver.Value) {
	if p == nil {
		return "TRUE", nil
	}

	var sb strings.Builder
	vars := p.writeSQL(&sb, nil)
	if sb.Len() == 0 {
		return "TRUE", nil
	}

	return sb.String(), vars
}

// toGORMExpression converts a comparison of the form Operator(Column, Value)
// into an SQL condition "Column Operator ?".
//
// Example:
//
//	Comparison{Column: "id", Operator: ">", Value: "123"}
//
// Result:
//
//	"id > ?", ["123"]
func (c Comparison) toGORMExpression() clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", c.Column, c.Operator),
		Vars: []any{parseAnyValue(c.Value)},
	}
}

func (c Comparison) writeSQL(sb *strings.Builder, vars []driver.Value) []driver.Value {
	fmt.Fprintf(sb, "%s %s ?", c.Column, c.Operator)
	return append(vars, parseAnyValue(c.Value))
}

func (n NullCheck) sql() string {
	return n.Column + lo.Ternary(n.Negate, " IS NOT NULL", " IS NULL")
}

func (n NullCheck) toGORMExpression() clause.Expression {
	return clause.Expr{SQL: n.sql()}
}

func (n NullCheck) writeSQL(sb *strings.Builder, vars []driver.Value) []driver.Value {
	sb.WriteString(n.sql())
	return vars
}

// toGORMExpression converts (K1, K2, K3) into "K1 AND K2 AND K3".
func (a And) toGORMExpression() clause.Expression {
	exprs := gormExpressions(a)
	if len(exprs) == 0 {
		return nil
	}

	return clause.And(exprs...)
}

// writeSQL renders (K1, K2, K3) as "(K1 AND K2 AND K3)".
func (a And) writeSQL(sb *strings.Builder, vars []driver.Value) []driver.Value {
	return writeJoined(sb, vars, a, " AND ")
}

// toGORMExpression converts (K1, K2, K3) into "K1 OR K2 OR K3".
func (o Or) toGORMExpression() clause.Expression {
	exprs := gormExpressions(o)
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		return clause.Or(exprs...)
	}
}

// writeSQL renders (K1, K2, K3) as "(K1 OR K2 OR K3)".
func (o Or) writeSQL(sb *strings.Builder, vars []driver.Value) []driver.Value {
	return writeJoined(sb, vars, o, " OR ")
}

func gormExpressions(operands []Predicate) []clause.Expression {
	exprs := make([]clause.Expression, 0, len(operands))
	for _, operand := range operands {
		if expr := ToGORMExpression(operand); expr != nil {
			exprs = append(exprs, expr)
		}
	}

	return exprs
}

func writeJoined(sb *strings.Builder, vars []driver.Value, operands []Predicate, sep string) []driver.Value {
	parts := make([]string, 0, len(operands))
	for _, operand := range operands {
		if operand == nil {
			continue
		}

		var part strings.Builder
		vars = operand.writeSQL(&part, vars)
		if part.Len() > 0 {
			parts = append(parts, part.String())
		}
	}

	if len(parts) == 0 {
		return vars
	}

	sb.WriteString("(" + strings.Join(parts, sep) + ")")

	return vars
}

func parseAnyValue(v any) any {
	// Try parsing a value as time.Time. If it succeeds, return time.Time.
	// Otherwise return the original value.
	fnParseBytesToTimeOrValue := func(vBytes []byte) any {
		dst := time.Time{}
		err := dst.UnmarshalText(vBytes)
		if err == nil {
			return dst
		}

		return v
	}

	switch vt := v.(type) {
	case string:
		return fnParseBytesToTimeOrValue([]byte(vt))
	case []byte:
		return fnParseBytesToTimeOrValue(vt)
	default:
		return v
	}
}

var (
	_ Predicate = Comparison{}
	_ Predicate = NullCheck{}
	_ Predicate = And{}
	_ Predicate = Or{}
)
