package main

import (
	"fmt"
	"strings"

	"github.com/Alp4ka/keysetpager"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "KEYSETCTL"

const (
	keyConfig     = "config"
	keyDialect    = "dialect"
	keyDSN        = "dsn"
	keyTable      = "table"
	keyPrimaryKey = "primary-key"
	keyNullable   = "nullable"
	keySort       = "sort"
	keyLogLevel   = "log-level"
	keyMaxLimit   = "max-limit"
	keyLegacy     = "legacy"
)

const (
	dialectPostgres = "postgres"
	dialectMySQL    = "mysql"
	dialectSQLite   = "sqlite"
)

type config struct {
	Dialect    string
	DSN        string
	Table      string
	PrimaryKey string
	Nullable   []string
	Sort       keysetpager.Orderings
	LogLevel   log.Level
	MaxLimit   int
	Legacy     bool
}

// Schema returns the hand-declared schema of the configured table.
func (c config) Schema() keysetpager.StaticSchema {
	return keysetpager.StaticSchema{PK: c.PrimaryKey, NullableColumns: c.Nullable}
}

// Columns returns every column the cursors are built from.
func (c config) Columns() []string {
	return lo.Uniq(append(c.Sort.Columns(), c.PrimaryKey))
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String(keyConfig, "", "path to a YAML config file")
	flags.String(keyDialect, dialectPostgres, "database dialect: postgres, mysql or sqlite")
	flags.String(keyDSN, "", "database connection string")
	flags.String(keyTable, "", "table to paginate")
	flags.String(keyPrimaryKey, "id", "single-column primary key of the table")
	flags.StringSlice(keyNullable, nil, "nullable columns of the table")
	flags.StringSlice(keySort, nil, `ordering, e.g. "created_at desc,id desc"`)
	flags.String(keyLogLevel, log.InfoLevel.String(), "log level")
	flags.Int(keyMaxLimit, keysetpager.MaxLimit, "largest page size served")
	flags.Bool(keyLegacy, false, "force the single-column legacy pager")
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("cannot bind flags: %w", err)
	}

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file '%s': %w", path, err)
		}
	}

	return v, nil
}

func loadConfig(v *viper.Viper) (config, error) {
	level, err := log.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return config{}, err
	}

	sortStrings := stringList(v, keySort)
	mapping := lo.SliceToMap(sortStrings, func(item string) (string, string) {
		column, _, _ := strings.Cut(strings.TrimSpace(item), " ")
		return column, column
	})

	sort, err := keysetpager.ParseSort(sortStrings, mapping)
	if err != nil {
		return config{}, fmt.Errorf("cannot parse sort: %w", err)
	}

	cfg := config{
		Dialect:    strings.ToLower(v.GetString(keyDialect)),
		DSN:        v.GetString(keyDSN),
		Table:      v.GetString(keyTable),
		PrimaryKey: v.GetString(keyPrimaryKey),
		Nullable:   stringList(v, keyNullable),
		Sort:       sort,
		LogLevel:   level,
		MaxLimit:   v.GetInt(keyMaxLimit),
		Legacy:     v.GetBool(keyLegacy),
	}

	if !lo.Contains([]string{dialectPostgres, dialectMySQL, dialectSQLite}, cfg.Dialect) {
		return config{}, fmt.Errorf("unsupported dialect '%s'", cfg.Dialect)
	}

	return cfg, nil
}

// stringList reads a list value. Environment variables hold comma separated
// lists, since sort entries contain spaces.
func stringList(v *viper.Viper, key string) []string {
	var items []string
	if raw, ok := v.Get(key).(string); ok {
		items = strings.Split(raw, ",")
	} else {
		items = v.GetStringSlice(key)
	}

	return lo.FilterMap(items, func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}
