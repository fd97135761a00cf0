package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	d := newRecordingDomain("d", nil)
	AddPublicDomain(d, "audio")
	defer RemovePublicDomain(d)

	got := GetDomain("audio", 0)
	require.NotNil(t, got)
	assert.Same(t, d, got.(*recordingDomain))

	assert.Nil(t, GetDomain("missing", 0))
	assert.Nil(t, GetDomain("audio", 1))
}

func TestRegistryIndexedLookup(t *testing.T) {
	first := newRecordingDomain("first", nil)
	second := newRecordingDomain("second", nil)
	AddPublicDomain(first, "graphics")
	AddPublicDomain(second, "graphics")
	defer RemovePublicDomain(first)
	defer RemovePublicDomain(second)

	assert.Same(t, first, GetDomain("graphics", 0).(*recordingDomain))
	assert.Same(t, second, GetDomain("graphics", 1).(*recordingDomain))
	assert.Equal(t, 2, PublicDomainCount("graphics"))
}

func TestRegistryRemove(t *testing.T) {
	d := newRecordingDomain("d", nil)
	AddPublicDomain(d, "sim")
	AddPublicDomain(d, "extra")

	removed := RemovePublicDomain(d)
	assert.Equal(t, 2, removed)
	assert.Nil(t, GetDomain("sim", 0))
	assert.Nil(t, GetDomain("extra", 0))
	assert.Equal(t, 0, RemovePublicDomain(d))
}

func TestCleanupPrunesRegistryEntries(t *testing.T) {
	d := newRecordingDomain("d", nil)
	require.True(t, d.Init(nil))
	AddPublicDomain(d, "pruned")
	require.NotNil(t, GetDomain("pruned", 0))

	require.True(t, d.Cleanup(nil))
	assert.Nil(t, GetDomain("pruned", 0))
}

func TestRegistryNilDomainIgnored(t *testing.T) {
	AddPublicDomain(nil, "nothing")
	assert.Nil(t, GetDomain("nothing", 0))
	assert.Equal(t, 0, RemovePublicDomain(nil))
}
