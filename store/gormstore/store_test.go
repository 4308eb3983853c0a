package gormstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/reglet-driver-sdk/driver"
	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
	"github.com/reglet-dev/reglet-driver-sdk/factory"
	"github.com/reglet-dev/reglet-driver-sdk/store/gormstore"
	"github.com/reglet-dev/reglet-driver-sdk/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *gormstore.Store {
	t.Helper()
	db, err := gormstore.Open("sqlite", filepath.Join(t.TempDir(), "drivers.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := gormstore.NewStore(db)
	require.NoError(t, err)
	return s
}

func TestStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ports.RegistryStore {
		return newSQLiteStore(t)
	})
}

func TestStore_NestedConfig(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	desc := entities.NewDescriptor("sqlite", "*gormdb.Driver")
	desc.Config = map[string]any{
		"pool":  map[string]any{"max": 10, "ratio": 0.5},
		"hosts": []any{"a", 2},
		"big":   int64(1) << 53,
	}
	require.NoError(t, s.AddDriver(ctx, "sqlite", desc))

	cfg, err := s.GetDriverConfig(ctx, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"pool":  map[string]any{"max": 10, "ratio": 0.5},
		"hosts": []any{"a", 2},
		"big":   1 << 53,
	}, cfg)
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := gormstore.NewStore(nil)
	assert.Error(t, err)
}

func TestOpen_UnsupportedDialect(t *testing.T) {
	_, err := gormstore.Open("oracle", "dsn")
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DRIVER_REGISTRY_DIALECT", "postgres")
	t.Setenv("DRIVER_REGISTRY_DSN", "host=localhost dbname=drivers")
	t.Setenv("DRIVER_REGISTRY_LOG_QUERIES", "true")

	cfg := gormstore.ConfigFromEnv()
	assert.Equal(t, "postgres", cfg.Dialect)
	assert.Equal(t, "host=localhost dbname=drivers", cfg.DSN)
	assert.True(t, cfg.LogQueries)
}

func TestStore_ManagerConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := driver.NewManager(newSQLiteStore(t), factory.New(), driver.WithLogger(driver.NewTestLogger()))
	require.NoError(t, m.Install(ctx, "n", driver.InstallParams{Class: "x"}))

	require.NoError(t, m.SaveConfig(ctx, "n", map[string]any{"a": 1}))

	props, err := m.GetConfig(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, props.Values())
}
