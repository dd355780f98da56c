package keysetpager

import "fmt"

// BuildSliceCondition builds the predicate selecting the rows that lie
// strictly on the given edge of the cursor in the list ordering.
//
// For a single column (the primary key):
//
//	pk OP vk
//
// For (c1, pk) with a non-null boundary value v1:
//
//	(c1 OP1 v1) OR (c1 = v1 AND pk OP2 vk) [OR c1 IS NULL]
//
// where the null disjunct is added for a nullable c1 when walking after the
// boundary: NULLs sort last in either direction.
//
// For (c1, pk) with a null (or absent) v1:
//
//	(c1 IS NULL AND pk OP2 vk) [OR c1 IS NOT NULL]
//
// where the non-null disjunct is added for a nullable c1 when walking before
// the boundary: every non-null row precedes the null partition.
func BuildSliceCondition(list OrderList, cursor Cursor, edge Edge) (Predicate, error) {
	if list.Len() == 0 || list.Len() > MaxOrderColumns {
		return nil, newValidationError("ordering by %d columns is not supported", list.Len())
	}

	pk := list.PrimaryKey()
	pkValue, ok := cursor.Value(pk.Column)
	if !ok || pkValue.Null {
		return nil, &CursorError{
			Token: cursor.String(),
			Err:   fmt.Errorf("cursor has no value for primary key column '%s'", pk.Column),
		}
	}

	tieBreak := Comparison{Column: pk.Column, Operator: pk.OperatorFor(edge), Value: pkValue.Value}
	if list.Len() == 1 {
		return tieBreak, nil
	}

	lead := list.At(0)
	leadValue, ok := cursor.Value(lead.Column)
	if !ok || leadValue.Null {
		return nullBoundaryCondition(lead, tieBreak, edge), nil
	}

	cond := Or{
		Comparison{Column: lead.Column, Operator: lead.OperatorFor(edge), Value: leadValue.Value},
		And{
			Comparison{Column: lead.Column, Operator: OperatorEQ, Value: leadValue.Value},
			tieBreak,
		},
	}
	if lead.Nullable && edge == EdgeAfter {
		cond = append(cond, NullCheck{Column: lead.Column})
	}

	return cond, nil
}

func nullBoundaryCondition(lead OrderColumn, tieBreak Comparison, edge Edge) Predicate {
	inPartition := And{NullCheck{Column: lead.Column}, tieBreak}
	if lead.Nullable && edge == EdgeBefore {
		return Or{inPartition, NullCheck{Column: lead.Column, Negate: true}}
	}

	return inPartition
}
