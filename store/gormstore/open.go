package gormstore

import (
	"fmt"

	"github.com/dracory/env"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormmysql "gorm.io/driver/mysql"
	gormpg "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	gormsqlserver "gorm.io/driver/sqlserver"
)

// Config selects the database backing the registry.
type Config struct {
	Dialect    string
	DSN        string
	LogQueries bool
}

// ConfigFromEnv reads the registry database settings from the environment,
// loading a .env file first when present:
//
//	DRIVER_REGISTRY_DIALECT      postgres | mysql | sqlite | sqlserver (default sqlite)
//	DRIVER_REGISTRY_DSN          connection string (default drivers.db)
//	DRIVER_REGISTRY_LOG_QUERIES  log SQL statements (default false)
func ConfigFromEnv() Config {
	env.Load(".env")

	return Config{
		Dialect:    env.GetStringOrDefault("DRIVER_REGISTRY_DIALECT", "sqlite"),
		DSN:        env.GetStringOrDefault("DRIVER_REGISTRY_DSN", "drivers.db"),
		LogQueries: env.GetBoolOrDefault("DRIVER_REGISTRY_LOG_QUERIES", false),
	}
}

// Open opens a GORM DB for the given dialect and DSN with query logging disabled.
// Supported dialects: postgres, mysql, sqlite, sqlserver.
func Open(dialect, dsn string) (*gorm.DB, error) {
	return OpenConfig(Config{Dialect: dialect, DSN: dsn})
}

// OpenConfig opens a GORM DB described by cfg.
func OpenConfig(cfg Config) (*gorm.DB, error) {
	mode := logger.Silent
	if cfg.LogQueries {
		mode = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(mode)}

	switch cfg.Dialect {
	case "postgres", "pg", "postgresql":
		return gorm.Open(gormpg.Open(cfg.DSN), gormCfg)
	case "mysql", "mariadb":
		return gorm.Open(gormmysql.Open(cfg.DSN), gormCfg)
	case "sqlite", "sqlite3":
		return gorm.Open(gormsqlite.Open(cfg.DSN), gormCfg)
	case "sqlserver", "mssql":
		return gorm.Open(gormsqlserver.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", cfg.Dialect)
	}
}
