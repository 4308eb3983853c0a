// Package storetest provides a conformance suite for ports.RegistryStore implementations.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for a single subtest.
type Factory func(t *testing.T) ports.RegistryStore

// Run exercises the RegistryStore contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("AddAndGet", func(t *testing.T) {
		s := newStore(t)
		desc := &entities.Descriptor{
			Name:          "smtp",
			Category:      "mail",
			Class:         "mail.SMTP",
			Description:   "SMTP transport",
			Version:       "1.2.0",
			ExtensionName: "mailer",
			Config:        map[string]any{"host": "localhost"},
			Status:        values.StatusEnabled,
		}
		require.NoError(t, s.AddDriver(ctx, "smtp", desc))

		got, err := s.GetDriver(ctx, "smtp")
		require.NoError(t, err)
		assert.Equal(t, "smtp", got.Name)
		assert.Equal(t, "smtp", got.Title)
		assert.Equal(t, "mail", got.Category)
		assert.Equal(t, "mail.SMTP", got.Class)
		assert.Equal(t, "SMTP transport", got.Description)
		assert.Equal(t, "1.2.0", got.Version)
		assert.Equal(t, "mailer", got.ExtensionName)
		assert.Equal(t, "localhost", got.Config["host"])
		assert.Equal(t, values.StatusEnabled, got.Status)

		ok, err := s.HasDriver(ctx, "smtp")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetDriver(ctx, "missing")
		assert.True(t, errors.Is(err, entities.ErrDriverNotFound))

		ok, err := s.HasDriver(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("AddRejectsInvalidName", func(t *testing.T) {
		s := newStore(t)
		err := s.AddDriver(ctx, "../escape", &entities.Descriptor{Class: "x"})
		assert.True(t, errors.Is(err, entities.ErrInvalidDescriptor))
	})

	t.Run("UpsertKeepsStatus", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddDriver(ctx, "smtp", &entities.Descriptor{Class: "v1", Status: values.StatusEnabled}))
		require.NoError(t, s.SetDriverStatus(ctx, "smtp", values.StatusDisabled))
		require.NoError(t, s.AddDriver(ctx, "smtp", &entities.Descriptor{Class: "v2", Status: values.StatusEnabled}))

		got, err := s.GetDriver(ctx, "smtp")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Class)
		assert.Equal(t, values.StatusDisabled, got.Status)

		list, err := s.GetDriversList(ctx, ports.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Remove", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddDriver(ctx, "smtp", &entities.Descriptor{Class: "x"}))
		require.NoError(t, s.RemoveDriver(ctx, "smtp"))

		ok, err := s.HasDriver(ctx, "smtp")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Error(t, s.RemoveDriver(ctx, "smtp"))
	})

	t.Run("ConfigRoundTrip", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddDriver(ctx, "smtp", &entities.Descriptor{Class: "x", Config: map[string]any{"old": "value"}}))
		require.NoError(t, s.SaveConfig(ctx, "smtp", map[string]any{"a": "1"}))

		first, err := s.GetDriverConfig(ctx, "smtp")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": "1"}, first)

		second, err := s.GetDriverConfig(ctx, "smtp")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		assert.True(t, errors.Is(s.SaveConfig(ctx, "missing", map[string]any{}), entities.ErrDriverNotFound))

		empty, err := s.GetDriverConfig(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("ConfigKeepsNumberTypes", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddDriver(ctx, "n", &entities.Descriptor{Class: "x"}))
		require.NoError(t, s.SaveConfig(ctx, "n", map[string]any{"a": 1}))

		got, err := s.GetDriverConfig(ctx, "n")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1}, got)

		nested := map[string]any{
			"timeout": 30,
			"ratio":   0.25,
			"enabled": true,
			"pool":    map[string]any{"max": 10},
			"ports":   []any{80, 443},
		}
		require.NoError(t, s.SaveConfig(ctx, "n", nested))

		got, err = s.GetDriverConfig(ctx, "n")
		require.NoError(t, err)
		assert.Equal(t, nested, got)

		desc, err := s.GetDriver(ctx, "n")
		require.NoError(t, err)
		assert.Equal(t, nested, desc.Config)
	})

	t.Run("ReturnedConfigIsACopy", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddDriver(ctx, "smtp", &entities.Descriptor{Class: "x", Config: map[string]any{"a": "1"}}))

		cfg, err := s.GetDriverConfig(ctx, "smtp")
		require.NoError(t, err)
		cfg["a"] = "changed"

		again, err := s.GetDriverConfig(ctx, "smtp")
		require.NoError(t, err)
		assert.Equal(t, "1", again["a"])
	})

	t.Run("ListFilters", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddDriver(ctx, "sqlite", &entities.Descriptor{Class: "x", Category: "storage/sql", Status: values.StatusEnabled}))
		require.NoError(t, s.AddDriver(ctx, "mysql", &entities.Descriptor{Class: "x", Category: "storage/sql", Status: values.StatusDisabled}))
		require.NoError(t, s.AddDriver(ctx, "smtp", &entities.Descriptor{Class: "x", Category: "mail", Status: values.StatusEnabled}))

		all, err := s.GetDriversList(ctx, ports.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"mysql", "smtp", "sqlite"}, names(all))

		enabled, err := s.GetDriversList(ctx, ports.ListFilter{Status: values.StatusEnabled.Ptr()})
		require.NoError(t, err)
		assert.Equal(t, []string{"smtp", "sqlite"}, names(enabled))

		storage, err := s.GetDriversList(ctx, ports.ListFilter{Category: "storage/*"})
		require.NoError(t, err)
		assert.Equal(t, []string{"mysql", "sqlite"}, names(storage))

		both, err := s.GetDriversList(ctx, ports.ListFilter{Category: "storage/sql", Status: values.StatusDisabled.Ptr()})
		require.NoError(t, err)
		assert.Equal(t, []string{"mysql"}, names(both))
	})

	t.Run("SetStatusMissing", func(t *testing.T) {
		s := newStore(t)
		err := s.SetDriverStatus(ctx, "missing", values.StatusEnabled)
		assert.True(t, errors.Is(err, entities.ErrDriverNotFound))
	})
}

func names(list []*entities.Descriptor) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Name)
	}
	return out
}
