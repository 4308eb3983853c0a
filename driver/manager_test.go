package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/reglet-dev/reglet-driver-sdk/driver"
	"github.com/reglet-dev/reglet-driver-sdk/driver/capability"
	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
	"github.com/reglet-dev/reglet-driver-sdk/factory"
	"github.com/reglet-dev/reglet-driver-sdk/parser"
	"github.com/reglet-dev/reglet-driver-sdk/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	httpClass = "http.Client"
	bareClass = "plain.Object"
)

// httpClient is the wrapped implementation produced by httpDriver.
type httpClient struct {
	config map[string]any
}

// httpDriver declares {"timeout": 30} and relies on the default InitDriver.
type httpDriver struct {
	capability.Base
}

func newHTTPDriver() *httpDriver {
	d := &httpDriver{}
	d.Bind(d)
	d.SetDriverParams(capability.Params{
		Name:        "http",
		Category:    "transport",
		Title:       "HTTP transport",
		Description: "Plain HTTP client",
		Version:     "1.3.0",
		Extension:   "net",
		Class:       httpClass,
	})
	return d
}

func (d *httpDriver) CreateDriverConfig(props *properties.Properties) {
	props.Property("timeout", 30)
}

// httpDriverClass is the factory class of httpDriver itself.
const httpDriverClass = "*driver_test.httpDriver"

type plainObject struct{}

func newTestManager(t *testing.T) (*driver.Manager, *driver.MockStore, *factory.Factory) {
	t.Helper()
	store := driver.NewMockStore()
	f := factory.New()
	f.RegisterType(func() any { return newHTTPDriver() })
	f.RegisterConfigurable(httpClass, func(config map[string]any) (any, error) {
		return &httpClient{config: config}, nil
	})
	f.Register(bareClass, func() (any, error) { return &plainObject{}, nil })

	m := driver.NewManager(store, f, driver.WithLogger(driver.NewTestLogger()))
	return m, store, f
}

// installHTTP installs a descriptor whose class is the driver type itself.
func installHTTP(t *testing.T, m *driver.Manager, config map[string]any) {
	t.Helper()
	err := m.Install(context.Background(), "http", driver.InstallParams{
		Class:  httpDriverClass,
		Config: config,
	})
	require.NoError(t, err)
}

func TestManager_InstallExplicitFields(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	err := m.Install(ctx, "smtp", driver.InstallParams{
		Class:       "mail.SMTP",
		Category:    "mail",
		Title:       "SMTP",
		Description: "Mail transport",
		Version:     "2.0.0",
		Config:      map[string]any{"host": "localhost"},
		Extension:   "mailer",
	})
	require.NoError(t, err)

	got, err := m.GetDriver(ctx, "smtp")
	require.NoError(t, err)
	assert.Equal(t, "smtp", got.Name)
	assert.Equal(t, "mail.SMTP", got.Class)
	assert.Equal(t, "mail", got.Category)
	assert.Equal(t, "SMTP", got.Title)
	assert.Equal(t, "Mail transport", got.Description)
	assert.Equal(t, "2.0.0", got.Version)
	assert.Equal(t, "mailer", got.ExtensionName)
	assert.Equal(t, map[string]any{"host": "localhost"}, got.Config)

	ok, err := m.Has(ctx, "smtp")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManager_InstallDefaults(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Install(ctx, "smtp", driver.InstallParams{Class: "mail.SMTP"}))

	got, err := m.GetDriver(ctx, "smtp")
	require.NoError(t, err)
	assert.Equal(t, "smtp", got.Title)
	assert.Equal(t, values.DefaultVersion, got.Version)
	assert.Empty(t, got.Config)
	assert.Equal(t, values.StatusEnabled, got.Status)
}

func TestManager_InstallDerivesFromLiveDriver(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	// Explicit params are ignored when derivation succeeds.
	err := m.Install(ctx, newHTTPDriver(), driver.InstallParams{Class: "ignored", Title: "ignored"})
	require.NoError(t, err)

	got, err := m.GetDriver(ctx, "http")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"timeout": 30}, got.Config)
	assert.Equal(t, httpClass, got.Class)
	assert.Equal(t, "HTTP transport", got.Title)
	assert.Equal(t, "transport", got.Category)
	assert.Equal(t, "Plain HTTP client", got.Description)
	assert.Equal(t, "1.3.0", got.Version)
	assert.Equal(t, "net", got.ExtensionName)
}

func TestManager_InstallDerivesFromClassIdentifier(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Install(ctx, httpDriverClass, driver.InstallParams{}))

	got, err := m.GetDriver(ctx, "http")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"timeout": 30}, got.Config)

	ok, err := m.Has(ctx, httpDriverClass)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_InstallFallsBackForBareClass(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	// The class exists but is not a driver, so the string is used as the name.
	require.NoError(t, m.Install(ctx, bareClass, driver.InstallParams{Class: bareClass}))

	got, err := m.GetDriver(ctx, bareClass)
	require.NoError(t, err)
	assert.Equal(t, bareClass, got.Class)
}

func TestManager_InstallErrors(t *testing.T) {
	t.Run("non-driver object", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		err := m.Install(context.Background(), &plainObject{}, driver.InstallParams{})
		assert.True(t, errors.Is(err, capability.ErrNotCapable))
		assert.Equal(t, 0, store.AddCalls)
	})

	t.Run("construction failure", func(t *testing.T) {
		m, store, f := newTestManager(t)
		boom := errors.New("boom")
		f.Register("broken", func() (any, error) { return nil, boom })

		err := m.Install(context.Background(), "broken", driver.InstallParams{})
		assert.True(t, errors.Is(err, boom))
		assert.Equal(t, 0, store.AddCalls)
	})

	t.Run("store failure", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		storeErr := errors.New("disk full")
		store.AddErr = storeErr

		err := m.Install(context.Background(), "smtp", driver.InstallParams{Class: "x"})
		assert.True(t, errors.Is(err, storeErr))
	})

	t.Run("nil descriptor", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		err := m.InstallDescriptor(context.Background(), nil)
		assert.True(t, errors.Is(err, entities.ErrInvalidDescriptor))
	})
}

func TestManager_Uninstall(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	installHTTP(t, m, nil)

	require.NoError(t, m.Uninstall(ctx, "http"))

	ok, err := m.Has(ctx, "http")
	require.NoError(t, err)
	assert.False(t, ok)

	instance, err := m.Create(ctx, "http", nil, nil)
	assert.Nil(t, instance)
	assert.True(t, errors.Is(err, entities.ErrDriverNotFound))

	_, err = m.GetDriver(ctx, "http")
	assert.True(t, errors.Is(err, entities.ErrDriverNotFound))
}

func TestManager_EnableDisable(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	installHTTP(t, m, nil)
	enabled := ports.ListFilter{Status: values.StatusEnabled.Ptr()}

	require.NoError(t, m.Disable(ctx, "http"))
	list, err := m.GetList(ctx, enabled)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, m.Enable(ctx, "http"))
	list, err = m.GetList(ctx, enabled)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "http", list[0].Name)

	assert.Error(t, m.Enable(ctx, "missing"))
}

func TestManager_GetListCategory(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.Install(ctx, "sqlite", driver.InstallParams{Class: "x", Category: "storage/sql"}))
	require.NoError(t, m.Install(ctx, "smtp", driver.InstallParams{Class: "x", Category: "mail"}))

	list, err := m.GetList(ctx, ports.ListFilter{Category: "storage/*"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sqlite", list[0].Name)

	all, err := m.GetList(ctx, ports.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestManager_ConfigRoundTrip(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	installHTTP(t, m, nil)

	require.NoError(t, m.SaveConfig(ctx, "http", map[string]any{"a": 1}))

	first, err := m.GetConfig(ctx, "http")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, first.Values())

	second, err := m.GetConfig(ctx, "http")
	require.NoError(t, err)
	assert.Equal(t, first.Values(), second.Values())
}

func TestManager_SaveProperties(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	installHTTP(t, m, nil)

	props := properties.New().Property("timeout", 30)
	props.Set("retries", 3)
	require.NoError(t, m.SaveProperties(ctx, "http", props))

	got, err := m.GetConfig(ctx, "http")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"timeout": 30, "retries": 3}, got.Values())
}

func TestManager_SaveConfigStoreFailure(t *testing.T) {
	m, store, _ := newTestManager(t)
	installHTTP(t, m, nil)
	store.SaveConfigErr = errors.New("read-only")

	err := m.SaveConfig(context.Background(), "http", map[string]any{"a": 1})
	assert.True(t, errors.Is(err, store.SaveConfigErr))
}

func TestManager_GetConfigMissingDriver(t *testing.T) {
	m, _, _ := newTestManager(t)

	props, err := m.GetConfig(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, props.Len())
}

func TestManager_CreateUsesStoredConfig(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	installHTTP(t, m, map[string]any{"timeout": 10})

	instance, err := m.Create(ctx, "http", map[string]any{"x": 1}, nil)
	require.NoError(t, err)

	d, ok := instance.(*httpDriver)
	require.True(t, ok)
	assert.Equal(t, 1, d.DriverOption("x", nil))
	assert.Equal(t, map[string]any{"timeout": 10}, d.DriverConfig())
	assert.Equal(t, capability.StateInitialized, d.State())

	client, ok := d.Instance().(*httpClient)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"timeout": 10}, client.config)
}

func TestManager_CreateOverridesConfig(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	installHTTP(t, m, map[string]any{"timeout": 10})

	d, err := m.CreateDriver(ctx, "http", map[string]any{}, map[string]any{"b": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": 2}, d.DriverConfig())
	assert.Empty(t, d.DriverOptions())

	// An empty override is still an override.
	d, err = m.CreateDriver(ctx, "http", nil, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, d.DriverConfig())
}

func TestManager_CreateProducesIndependentInstances(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	installHTTP(t, m, nil)

	first, err := m.CreateDriver(ctx, "http", map[string]any{"x": 1}, nil)
	require.NoError(t, err)
	second, err := m.CreateDriver(ctx, "http", nil, nil)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Nil(t, second.DriverOption("x", nil))
}

func TestManager_CreateBareObject(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.Install(ctx, "plain", driver.InstallParams{Class: bareClass, Config: map[string]any{"a": 1}}))

	instance, err := m.Create(ctx, "plain", map[string]any{"x": 1}, nil)
	require.NoError(t, err)
	assert.IsType(t, &plainObject{}, instance)

	_, err = m.CreateDriver(ctx, "plain", nil, nil)
	assert.True(t, errors.Is(err, capability.ErrNotCapable))
}

func TestManager_CreateConstructionFailure(t *testing.T) {
	m, _, f := newTestManager(t)
	ctx := context.Background()
	boom := errors.New("boom")
	f.Register("broken", func() (any, error) { return nil, boom })
	require.NoError(t, m.Install(ctx, "broken-driver", driver.InstallParams{Class: "broken"}))

	_, err := m.Create(ctx, "broken-driver", nil, nil)
	assert.True(t, errors.Is(err, boom))

	require.NoError(t, m.Install(ctx, "unknown", driver.InstallParams{Class: "does.not.exist"}))
	_, err = m.Create(ctx, "unknown", nil, nil)
	assert.True(t, errors.Is(err, factory.ErrUnknownClass))
}

func TestManager_CreateInitFailure(t *testing.T) {
	m, _, f := newTestManager(t)
	ctx := context.Background()
	initErr := errors.New("cannot connect")
	f.RegisterConfigurable(httpClass, func(map[string]any) (any, error) { return nil, initErr })
	installHTTP(t, m, nil)

	_, err := m.Create(ctx, "http", nil, nil)
	assert.True(t, errors.Is(err, initErr))
}

func TestManager_HasVersion(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.Install(ctx, "smtp", driver.InstallParams{Class: "x", Version: "1.4.0"}))

	ok, err := m.HasVersion(ctx, "smtp", "^1.2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.HasVersion(ctx, "smtp", ">= 2.0")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.HasVersion(ctx, "missing", "^1.0")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.HasVersion(ctx, "smtp", "not a constraint")
	assert.Error(t, err)
}

func TestManager_InstallManifest(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	data := []byte(`
drivers:
  - name: http
    class: "*driver_test.httpDriver"
    config:
      timeout: 5
  - name: plain
    class: plain.Object
    status: 0
`)

	require.NoError(t, m.InstallManifest(ctx, parser.NewYAMLDescriptorParser(), data))

	d, err := m.CreateDriver(ctx, "http", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"timeout": 5}, d.DriverConfig())

	disabled, err := m.GetList(ctx, ports.ListFilter{Status: values.StatusDisabled.Ptr()})
	require.NoError(t, err)
	require.Len(t, disabled, 1)
	assert.Equal(t, "plain", disabled[0].Name)

	assert.Error(t, m.InstallManifest(ctx, parser.NewYAMLDescriptorParser(), []byte("drivers: []")))
}

func TestManager_GetDriverStoreFailure(t *testing.T) {
	m, store, _ := newTestManager(t)
	store.GetErr = errors.New("connection reset")

	_, err := m.Create(context.Background(), "http", nil, nil)
	assert.True(t, errors.Is(err, store.GetErr))
	assert.False(t, errors.Is(err, entities.ErrDriverNotFound))
}
