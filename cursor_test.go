package keysetpager

import (
	"database/sql"
	"encoding/base64"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func mustOrderList(t *testing.T, s Schema, orderBy ...OrderBy) OrderList {
	t.Helper()

	list, err := NewOrderList(orderBy, s)
	require.NoError(t, err)

	return list
}

func Test_EncodeCursor_RoundTrip(t *testing.T) {
	list := mustOrderList(t, tRowSchema,
		OrderBy{Column: "col", Direction: DirectionASC},
		OrderBy{Column: "id", Direction: DirectionDESC},
	)

	tests := []struct {
		name string
		row  tRow
		want map[string]*string
	}{
		{"non-null lead", row("A", 2), map[string]*string{"col": lo.ToPtr("A"), "id": lo.ToPtr("2")}},
		{"null lead", row("", 3), map[string]*string{"col": nil, "id": lo.ToPtr("3")}},
		{"unicode lead", row("Zürich", 40), map[string]*string{"col": lo.ToPtr("Zürich"), "id": lo.ToPtr("40")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := EncodeCursor(tt.row, list, tRowGetters)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			cursor, err := DecodeCursor(token)
			require.NoError(t, err)
			require.Equal(t, tt.want, cursor.Map())
			require.Equal(t, []string{"col", "id"}, cursor.Columns())
			require.Equal(t, token, cursor.String())
		})
	}
}

func Test_EncodeCursor_MissingGetter(t *testing.T) {
	list := mustOrderList(t, tRowSchema, OrderBy{Column: "id", Direction: DirectionASC})

	_, err := EncodeCursor(row("A", 1), list, Getters[tRow]{})
	require.ErrorContains(t, err, "cannot find getter for column 'id'")
}

func Test_DecodeCursor_Errors(t *testing.T) {
	encode := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "!!!"},
		{"not json", encode("id=1")},
		{"json object instead of list", encode(`{"id":"1"}`)},
		{"element without column", encode(`[{"v":"1"}]`)},
		{"duplicate column", encode(`[{"c":"id","v":"1"},{"c":"id","v":"2"}]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.token)
			require.Error(t, err)
			require.True(t, IsCursorError(err), "got %T", err)
			require.False(t, IsValidationError(err))
		})
	}
}

func Test_DecodeCursor_EmptyAndForeignShape(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	require.True(t, cursor.IsEmpty())
	require.Equal(t, "", cursor.String())

	// Issued when the ordering was by id only.
	cursor, err = DecodeCursor(NewCursor(CursorElement{Column: "id", Value: lo.ToPtr("9")}).String())
	require.NoError(t, err)

	_, ok := cursor.Value("col")
	require.False(t, ok)

	value, ok := cursor.Value("id")
	require.True(t, ok)
	require.Equal(t, CursorValue{Value: "9"}, value)

	cursor = NewCursor(CursorElement{Column: "col"})
	value, ok = cursor.Value("col")
	require.True(t, ok)
	require.True(t, value.Null)
}

type tStringer struct{ v string }

func (s tStringer) String() string { return "s:" + s.v }

func Test_stringifyValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 600, time.UTC)

	tests := []struct {
		name string
		in   any
		want *string
	}{
		{"nil", nil, nil},
		{"string", "abc", lo.ToPtr("abc")},
		{"bytes", []byte("xyz"), lo.ToPtr("xyz")},
		{"int", 42, lo.ToPtr("42")},
		{"uint64", uint64(7), lo.ToPtr("7")},
		{"float", 1.5, lo.ToPtr("1.5")},
		{"bool", true, lo.ToPtr("true")},
		{"time", ts, lo.ToPtr("2024-01-02T03:04:05.0000006Z")},
		{"time pointer", &ts, lo.ToPtr("2024-01-02T03:04:05.0000006Z")},
		{"nil pointer", (*int)(nil), nil},
		{"pointer", lo.ToPtr(5), lo.ToPtr("5")},
		{"null string", sql.NullString{}, nil},
		{"valid null string", sql.NullString{String: "ok", Valid: true}, lo.ToPtr("ok")},
		{"valid null int pointer", &sql.NullInt64{Int64: 3, Valid: true}, lo.ToPtr("3")},
		{"nil valuer pointer", (*sql.NullInt64)(nil), nil},
		{"stringer", tStringer{v: "q"}, lo.ToPtr("s:q")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stringifyValue(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func Test_MapGetters(t *testing.T) {
	getters := MapGetters("name", "id")
	require.Len(t, getters, 2)

	list := mustOrderList(t, StaticSchema{PK: "id", NullableColumns: []string{"name"}},
		OrderBy{Column: "name", Direction: DirectionASC},
		OrderBy{Column: "id", Direction: DirectionASC},
	)

	token, err := EncodeCursor(map[string]any{"id": int64(4), "name": []byte("B")}, list, getters)
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	require.Equal(t, map[string]*string{"name": lo.ToPtr("B"), "id": lo.ToPtr("4")}, cursor.Map())

	token, err = EncodeCursor(map[string]any{"id": int64(5)}, list, getters)
	require.NoError(t, err)

	cursor, err = DecodeCursor(token)
	require.NoError(t, err)
	require.Equal(t, map[string]*string{"name": nil, "id": lo.ToPtr("5")}, cursor.Map())
}
