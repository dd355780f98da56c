package keysetpager

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"
	"sync"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Schema exposes the table facts the pager validates orderings against.
type Schema interface {
	// PrimaryKey returns the single primary key column, or "" when the table
	// has none or a composite one.
	PrimaryKey() string
	// Nullable reports whether the column may hold NULL.
	Nullable(column string) bool
}

// StaticSchema is a hand-declared Schema, used when there is no gorm model
// for the table (raw table names, map rows).
type StaticSchema struct {
	PK              string
	NullableColumns []string
}

func (s StaticSchema) PrimaryKey() string {
	return s.PK
}

func (s StaticSchema) Nullable(column string) bool {
	return lo.Contains(s.NullableColumns, column)
}

var _valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// ModelSchema is a Schema parsed from a gorm model.
//
// A column is nullable unless it is a primary key or tagged `not null`, and
// its Go type can actually hold NULL (pointer or driver.Valuer such as
// sql.NullString).
type ModelSchema struct {
	parsed *schema.Schema
}

// ParseModelSchema parses model with the naming strategy of db.
func ParseModelSchema(db *gorm.DB, model any) (*ModelSchema, error) {
	parsed, err := schema.Parse(model, &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("cannot parse model schema: %w", err)
	}

	return &ModelSchema{parsed: parsed}, nil
}

func (s *ModelSchema) PrimaryKey() string {
	if s == nil || len(s.parsed.PrimaryFields) != 1 {
		return ""
	}

	return s.parsed.PrimaryFields[0].DBName
}

func (s *ModelSchema) Nullable(column string) bool {
	if s == nil {
		return false
	}

	field := s.parsed.LookUpField(column)
	if field == nil || field.PrimaryKey || field.NotNull {
		return false
	}

	return field.FieldType.Kind() == reflect.Pointer || field.FieldType.Implements(_valuerType)
}

// Table returns the model table name.
func (s *ModelSchema) Table() string {
	return s.parsed.Table
}

// ModelGetters builds Getters for every column of a parsed model, reading
// field values through gorm's reflection accessors.
func ModelGetters[T any](s *ModelSchema) Getters[T] {
	getters := make(Getters[T], len(s.parsed.DBNames))
	for _, dbName := range s.parsed.DBNames {
		field := s.parsed.FieldsByDBName[dbName]
		getters[dbName] = func(row T) any {
			rv := reflect.Indirect(reflect.ValueOf(row))
			value, zero := field.ValueOf(context.Background(), rv)
			if zero && field.FieldType.Kind() == reflect.Pointer {
				return nil
			}

			return value
		}
	}

	return getters
}

// MapGetters builds Getters for rows scanned into map[string]any.
func MapGetters(columns ...string) Getters[map[string]any] {
	getters := make(Getters[map[string]any], len(columns))
	for _, column := range columns {
		getters[column] = func(row map[string]any) any {
			return row[column]
		}
	}

	return getters
}

var (
	_ Schema = StaticSchema{}
	_ Schema = (*ModelSchema)(nil)
)
