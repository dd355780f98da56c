package keysetpager

import (
	"bytes"
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/samber/lo"
)

var _encoder = base64.RawURLEncoding

// Getters - dictionary of column getters for a row type. List the columns the
// pagination is based on.
// Example:
//
//	keysetpager.Getters[models.PlayerPushTarget]{
//		"id":          func(row models.PlayerPushTarget) any { return row.ID },
//		"deposit_sum": func(row models.PlayerPushTarget) any { return row.DepositSum },
//	}
type Getters[T any] map[string]func(T) any

// CursorValue is the stringified value of one column at a page boundary.
type CursorValue struct {
	Value string
	Null  bool
}

// CursorElement is one (column, value) pair of a cursor. A nil Value encodes
// SQL NULL.
type CursorElement struct {
	Column string  `json:"c"`
	Value  *string `json:"v"`
}

// Cursor is the decoded form of a page boundary token: the ordering columns
// of one concrete row, in ordering order, with the primary key last.
type Cursor struct {
	elements []CursorElement
}

// NewCursor builds a cursor from elements. Prefer EncodeCursor, which reads
// the values from a returned row.
func NewCursor(elements ...CursorElement) Cursor {
	return Cursor{elements: elements}
}

// DecodeCursor parses a base64 encoded token into a Cursor. An empty token
// yields an empty cursor.
func DecodeCursor(token string) (Cursor, error) {
	if len(token) == 0 {
		return Cursor{}, nil
	}

	jsonData, err := _encoder.DecodeString(token)
	if err != nil {
		return Cursor{}, &CursorError{Token: token, Err: fmt.Errorf("failed to decode base64 encoded cursor: %w", err)}
	}

	var elems []CursorElement
	if err = json.Unmarshal(jsonData, &elems); err != nil {
		return Cursor{}, &CursorError{Token: token, Err: fmt.Errorf("failed to unmarshal json encoded cursor: %w", err)}
	}

	seen := make(map[string]struct{}, len(elems))
	for _, elem := range elems {
		if elem.Column == "" {
			return Cursor{}, &CursorError{Token: token, Err: fmt.Errorf("cursor element without column")}
		}
		if _, ok := seen[elem.Column]; ok {
			return Cursor{}, &CursorError{Token: token, Err: fmt.Errorf("duplicate cursor column '%s'", elem.Column)}
		}
		seen[elem.Column] = struct{}{}
	}

	return Cursor{elements: elems}, nil
}

// String - implements fmt.Stringer. Returns the opaque token.
func (c Cursor) String() string {
	if len(c.elements) == 0 {
		return ""
	}

	jTok, err := json.Marshal(c.elements)
	if err != nil {
		panic(fmt.Errorf("cannot marshal cursor value: %w", err))
	}

	var buf bytes.Buffer
	if err = json.Compact(&buf, jTok); err != nil {
		panic(fmt.Errorf("cannot compact cursor value: %w", err))
	}

	return _encoder.EncodeToString(buf.Bytes())
}

// IsEmpty reports whether the cursor carries no boundary.
func (c Cursor) IsEmpty() bool {
	return len(c.elements) == 0
}

// Elements returns the cursor elements in encoding order.
func (c Cursor) Elements() []CursorElement {
	return c.elements
}

// Columns returns the cursor column names in encoding order.
func (c Cursor) Columns() []string {
	return lo.Map(c.elements, func(item CursorElement, _ int) string { return item.Column })
}

// Value looks the column up. ok is false when the cursor was issued for an
// ordering that did not include the column.
func (c Cursor) Value(column string) (value CursorValue, ok bool) {
	elem, ok := lo.Find(c.elements, func(item CursorElement) bool { return item.Column == column })
	if !ok {
		return CursorValue{}, false
	}

	if elem.Value == nil {
		return CursorValue{Null: true}, true
	}

	return CursorValue{Value: *elem.Value}, true
}

// Map returns the cursor as column → value; NULL maps to nil.
func (c Cursor) Map() map[string]*string {
	return lo.SliceToMap(c.elements, func(item CursorElement) (string, *string) {
		return item.Column, item.Value
	})
}

var _ fmt.Stringer = Cursor{}

// EncodeCursor reads the ordering columns of row and returns the opaque
// token of the boundary it represents.
func EncodeCursor[T any](row T, list OrderList, getters Getters[T]) (string, error) {
	cursor, err := cursorFromRow(row, list.Columns(), getters)
	if err != nil {
		return "", err
	}

	return cursor.String(), nil
}

func cursorFromRow[T any](row T, columns []string, getters Getters[T]) (Cursor, error) {
	elems := make([]CursorElement, 0, len(columns))
	for _, column := range columns {
		getter, ok := getters[column]
		if !ok {
			return Cursor{}, fmt.Errorf("cannot find getter for column '%s' met in ordering", column)
		}

		value, err := stringifyValue(getter(row))
		if err != nil {
			return Cursor{}, fmt.Errorf("cannot stringify column '%s': %w", column, err)
		}

		elems = append(elems, CursorElement{Column: column, Value: value})
	}

	return Cursor{elements: elems}, nil
}

// stringifyValue renders a column value the way it is carried in a cursor.
// nil, nil pointers and valuers reporting NULL return nil.
func stringifyValue(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		if _, ok := v.(driver.Valuer); !ok {
			return stringifyValue(rv.Elem().Interface())
		}
	}

	switch vt := v.(type) {
	case string:
		return &vt, nil
	case []byte:
		return lo.ToPtr(string(vt)), nil
	case time.Time:
		text, err := vt.MarshalText()
		if err != nil {
			return nil, err
		}
		return lo.ToPtr(string(text)), nil
	case bool:
		return lo.ToPtr(strconv.FormatBool(vt)), nil
	case driver.Valuer:
		dv, err := vt.Value()
		if err != nil {
			return nil, err
		}
		return stringifyValue(dv)
	case fmt.Stringer:
		return lo.ToPtr(vt.String()), nil
	default:
		return lo.ToPtr(fmt.Sprint(v)), nil
	}
}
