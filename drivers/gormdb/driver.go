// Package gormdb provides a database driver backed by GORM.
package gormdb

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/reglet-dev/reglet-driver-sdk/driver/capability"
	"github.com/reglet-dev/reglet-driver-sdk/properties"
	"github.com/reglet-dev/reglet-driver-sdk/retry"
	"github.com/reglet-dev/reglet-driver-sdk/store/gormstore"
)

const (
	Name     = "gormdb"
	Category = "storage/sql"

	DefaultDialect        = "sqlite"
	DefaultMaxOpenConns   = 10
	DefaultConnectRetries = 3
)

// Driver opens a *gorm.DB from its configuration.
type Driver struct {
	capability.Base
	db *gorm.DB
}

// New creates an unconfigured driver.
func New() *Driver {
	d := &Driver{}
	d.Bind(d)
	d.SetDriverParams(capability.Params{
		Name:        Name,
		Category:    Category,
		Title:       "SQL database",
		Description: "Relational database connection through GORM",
		Version:     "1.0.0",
	})
	return d
}

// CreateDriverConfig declares the connection settings.
func (d *Driver) CreateDriverConfig(props *properties.Properties) {
	props.Property("dialect", DefaultDialect,
		properties.WithTitle("Dialect"),
		properties.WithDescription("postgres, mysql, sqlite or sqlserver"),
		properties.Required())
	props.Property("dsn", nil,
		properties.WithTitle("DSN"),
		properties.WithType(properties.TypeString),
		properties.Required())
	props.Property("max_open_conns", DefaultMaxOpenConns,
		properties.WithTitle("Max open connections"))
	props.Property("connect_retries", DefaultConnectRetries,
		properties.WithTitle("Connect retries"),
		properties.WithDescription("Ping retries after the first attempt; zero or less disables them"))
}

// InitDriver validates props against the declared schema and opens the database.
func (d *Driver) InitDriver(props *properties.Properties) error {
	cfg := properties.New()
	d.CreateDriverConfig(cfg)
	if props != nil {
		for k, v := range props.Values() {
			cfg.Set(k, v)
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("init %s driver: %w", Name, err)
	}

	dialect, _ := cfg.GetOrDefault("dialect", DefaultDialect).(string)
	dsn, _ := cfg.GetOrDefault("dsn", "").(string)
	maxOpen, err := toInt(cfg.GetOrDefault("max_open_conns", DefaultMaxOpenConns))
	if err != nil {
		return fmt.Errorf("init %s driver: max_open_conns: %w", Name, err)
	}
	retries, err := toInt(cfg.GetOrDefault("connect_retries", DefaultConnectRetries))
	if err != nil {
		return fmt.Errorf("init %s driver: connect_retries: %w", Name, err)
	}

	db, err := gormstore.Open(dialect, dsn)
	if err != nil {
		return fmt.Errorf("init %s driver: %w", Name, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("init %s driver: %w", Name, err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	policy := retry.Policy{MaxRetries: retries, InitialBackoff: 200 * time.Millisecond}
	if retries == 0 {
		policy.MaxRetries = -1
	}
	if err := policy.Do(context.Background(), sqlDB.PingContext); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("init %s driver: ping: %w", Name, err)
	}

	d.db = db
	d.SetInstance(db)
	return nil
}

// DB returns the opened handle, or nil before InitDriver succeeds.
func (d *Driver) DB() *gorm.DB {
	return d.db
}

// Close releases the underlying connection pool.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// toInt accepts the numeric shapes a caller-supplied config may hold.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
