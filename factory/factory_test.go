package factory_test

import (
	"errors"
	"testing"

	"github.com/reglet-dev/reglet-driver-sdk/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	size int
}

func TestFactory_CreateInstance(t *testing.T) {
	f := factory.New()
	f.Register("widget", func() (any, error) { return &widget{size: 1}, nil })

	assert.True(t, f.Has("widget"))
	assert.False(t, f.Has("gadget"))

	got, err := f.CreateInstance("widget")
	require.NoError(t, err)
	assert.Equal(t, 1, got.(*widget).size)

	// Every call produces a new instance.
	again, err := f.CreateInstance("widget")
	require.NoError(t, err)
	assert.NotSame(t, got, again)
}

func TestFactory_UnknownClass(t *testing.T) {
	f := factory.New()

	_, err := f.CreateInstance("missing")
	assert.True(t, errors.Is(err, factory.ErrUnknownClass))

	_, err = f.CreateInstanceWithConfig("missing", nil)
	assert.True(t, errors.Is(err, factory.ErrUnknownClass))
}

func TestFactory_ConstructorErrorsPropagate(t *testing.T) {
	f := factory.New()
	boom := errors.New("boom")
	f.Register("broken", func() (any, error) { return nil, boom })
	f.Register("empty", func() (any, error) { return nil, nil })

	_, err := f.CreateInstance("broken")
	assert.True(t, errors.Is(err, boom))

	_, err = f.CreateInstance("empty")
	assert.Error(t, err)
}

func TestFactory_CreateInstanceWithConfig(t *testing.T) {
	f := factory.New()
	f.RegisterConfigurable("widget", func(config map[string]any) (any, error) {
		size, _ := config["size"].(int)
		return &widget{size: size}, nil
	})

	got, err := f.CreateInstanceWithConfig("widget", map[string]any{"size": 7})
	require.NoError(t, err)
	assert.Equal(t, 7, got.(*widget).size)

	// Configurable constructors also serve CreateInstance.
	got, err = f.CreateInstance("widget")
	require.NoError(t, err)
	assert.Equal(t, 0, got.(*widget).size)
}

func TestFactory_PlainConstructorIgnoresConfig(t *testing.T) {
	f := factory.New()
	f.Register("widget", func() (any, error) { return &widget{size: 3}, nil })

	got, err := f.CreateInstanceWithConfig("widget", map[string]any{"size": 9})
	require.NoError(t, err)
	assert.Equal(t, 3, got.(*widget).size)
}

func TestFactory_RegisterType(t *testing.T) {
	f := factory.New()
	class := f.RegisterType(func() any { return &widget{} })

	assert.Equal(t, "*factory_test.widget", class)
	assert.Equal(t, []string{"*factory_test.widget"}, f.Classes())

	got, err := f.CreateInstance(class)
	require.NoError(t, err)
	assert.IsType(t, &widget{}, got)
}
