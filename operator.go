package keysetpager

import "fmt"

// Operator defines a comparison operator for filtering by column.
// Used in page boundary predicates.
type Operator string

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"
	OperatorEQ Operator = "="
)

func (o Operator) Valid() bool {
	return o == OperatorLT || o == OperatorGT || o == OperatorEQ
}

// Inverse returns the strict operator pointing the other way. Equality is its
// own inverse.
func (o Operator) Inverse() Operator {
	switch o {
	case OperatorGT:
		return OperatorLT
	case OperatorLT:
		return OperatorGT
	case OperatorEQ:
		return OperatorEQ
	default:
		panic(fmt.Errorf("cannot invert operator '%s'", o))
	}
}
