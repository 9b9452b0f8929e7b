package ndn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryMatchAndPublishOnce(t *testing.T) {
	r := NewRegistry()

	tempProducer := func(name []byte) ([]byte, bool) { return []byte("21C"), true }
	lightProducer := func(name []byte) ([]byte, bool) { return []byte("ON"), true }

	err := r.Publish(
		[][]byte{[]byte("temp"), []byte("light")},
		[]Producer{tempProducer, lightProducer},
	)
	require.NoError(t, err)

	p, ok := r.Match([]byte("temp"))
	require.True(t, ok)
	content, produced := p(nil)
	assert.True(t, produced)
	assert.Equal(t, []byte("21C"), content)

	_, ok = r.Match([]byte("unknown"))
	assert.False(t, ok, "an unregistered name must not match")

	err = r.Publish([][]byte{[]byte("door")}, []Producer{lightProducer})
	assert.ErrorIs(t, err, ErrRegistryAlreadyPopulated)

	// The second Publish call must not have altered the registry.
	_, ok = r.Match([]byte("door"))
	assert.False(t, ok)
}

func TestRegistryExactNameEquality(t *testing.T) {
	r := NewRegistry()
	p := func(name []byte) ([]byte, bool) { return []byte("x"), true }
	require.NoError(t, r.Publish([][]byte{[]byte("temp")}, []Producer{p}))

	_, ok := r.Match([]byte("temperature"))
	assert.False(t, ok, "registry must not prefix-match")

	_, ok = r.Match([]byte("tem"))
	assert.False(t, ok, "registry must not substring-match")
}
