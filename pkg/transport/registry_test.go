package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"http", "offline", "resty"}, r.List())

	tr, err := r.Create("offline", &OfflineConfig{})
	require.NoError(t, err)
	assert.Equal(t, "offline", tr.Name())

	tr, err = r.Create("resty", &RestyConfig{})
	require.NoError(t, err)
	assert.Equal(t, "resty", tr.Name())
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistry()
	factory := func(config TransportConfig) (Transport, error) { return NewOffline(nil), nil }

	require.NoError(t, r.Register("offline", factory))
	assert.Error(t, r.Register("offline", factory))
	assert.Error(t, r.Register("", factory))
	assert.Error(t, r.Register("x", nil))
	assert.True(t, r.Has("offline"))
	assert.False(t, r.Has("http"))

	_, err := r.Create("http", &HTTPConfig{})
	assert.Error(t, err, "invalid http config")

	_, err = r.Create("offline", &RestyConfig{})
	assert.Error(t, err, "type mismatch")

	_, err = r.Create("offline", nil)
	assert.Error(t, err)
}
