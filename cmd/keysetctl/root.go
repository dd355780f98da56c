package main

import (
	"fmt"
	"time"

	"github.com/Alp4ka/keysetpager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type app struct {
	cfg config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "keysetctl",
		Short:         "Pages through a database table with keyset cursors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}

			a.cfg, err = loadConfig(v)
			if err != nil {
				return err
			}

			log.SetFormatter(&log.JSONFormatter{})
			log.SetOutput(cmd.ErrOrStderr())
			log.SetLevel(a.cfg.LogLevel)

			return nil
		},
	}
	registerFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newPageCmd(a),
		newWalkCmd(a),
		newCursorCmd(),
	)

	return rootCmd
}

func (a *app) openDB() (*gorm.DB, error) {
	if a.cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	if a.cfg.Table == "" {
		return nil, fmt.Errorf("table is required")
	}

	var dialector gorm.Dialector
	switch a.cfg.Dialect {
	case dialectPostgres:
		dialector = postgres.Open(a.cfg.DSN)
	case dialectMySQL:
		dialector = mysql.Open(a.cfg.DSN)
	case dialectSQLite:
		dialector = sqlite.Open(a.cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported dialect '%s'", a.cfg.Dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(log.StandardLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(a.cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open %s database: %w", a.cfg.Dialect, err)
	}

	return db, nil
}

// relation returns the configured table as a relation of map rows, together
// with the getters reading its cursor columns.
func (a *app) relation(db *gorm.DB) (keysetpager.Relation[map[string]any], keysetpager.Getters[map[string]any]) {
	rel := keysetpager.NewGORMRelation[map[string]any](db.Table(a.cfg.Table), a.cfg.Schema(), a.cfg.Sort...)

	return rel, keysetpager.MapGetters(a.cfg.Columns()...)
}

func (a *app) pager(getters keysetpager.Getters[map[string]any]) *keysetpager.Pager[map[string]any] {
	pager := keysetpager.NewPager(getters).
		WithMaxLimit(a.cfg.MaxLimit).
		WithLogger(log.StandardLogger())
	if a.cfg.Legacy {
		pager = pager.WithLegacy()
	}

	return pager
}

func gormLogLevel(level log.Level) gormlogger.LogLevel {
	switch {
	case level >= log.DebugLevel:
		return gormlogger.Info
	case level >= log.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
