package driver

import (
	"context"
	"io"
	"log/slog"

	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
	"github.com/reglet-dev/reglet-driver-sdk/store/memory"
)

// MockStore implements ports.RegistryStore on top of an in-memory store,
// failing the operations whose error field is set.
type MockStore struct {
	*memory.Store

	GetErr        error
	AddErr        error
	RemoveErr     error
	SaveConfigErr error
	StatusErr     error

	AddCalls int
}

// NewMockStore creates a MockStore with an empty backing store.
func NewMockStore() *MockStore {
	return &MockStore{Store: memory.NewStore()}
}

func (m *MockStore) GetDriver(ctx context.Context, name string) (*entities.Descriptor, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Store.GetDriver(ctx, name)
}

func (m *MockStore) AddDriver(ctx context.Context, name string, descriptor *entities.Descriptor) error {
	m.AddCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	return m.Store.AddDriver(ctx, name, descriptor)
}

func (m *MockStore) RemoveDriver(ctx context.Context, name string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	return m.Store.RemoveDriver(ctx, name)
}

func (m *MockStore) SaveConfig(ctx context.Context, name string, config map[string]any) error {
	if m.SaveConfigErr != nil {
		return m.SaveConfigErr
	}
	return m.Store.SaveConfig(ctx, name, config)
}

func (m *MockStore) SetDriverStatus(ctx context.Context, name string, status values.Status) error {
	if m.StatusErr != nil {
		return m.StatusErr
	}
	return m.Store.SetDriverStatus(ctx, name, status)
}

func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
