package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingDomain counts objects registered with it.
type trackingDomain struct {
	SynchronousBase

	mu      sync.Mutex
	objects map[any]bool
}

func newTrackingDomain() *trackingDomain {
	d := &trackingDomain{objects: make(map[any]bool)}
	d.Bind(d)
	return d
}

func (d *trackingDomain) RegisterObject(obj any) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[obj] = true
	return true
}

func (d *trackingDomain) UnregisterObject(obj any) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.objects, obj)
	return true
}

func (d *trackingDomain) tracked(obj any) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.objects[obj]
}

type memberObject struct {
	Member
}

func TestMemberRegisterUnregister(t *testing.T) {
	d := newTrackingDomain()
	obj := &memberObject{}

	require.True(t, obj.RegisterWithDomain(d, obj))
	assert.Same(t, d, obj.ParentDomain().(*trackingDomain))
	assert.True(t, d.tracked(obj))

	obj.UnregisterFromDomain(d, obj)
	assert.Nil(t, obj.ParentDomain())
	assert.False(t, d.tracked(obj))
}

func TestMemberRegisterFailsWithoutDomain(t *testing.T) {
	obj := &memberObject{}
	assert.False(t, obj.RegisterWithDomain(nil, obj))
	assert.Nil(t, obj.ParentDomain())
}

func TestMemberDefaultDomain(t *testing.T) {
	d := newTrackingDomain()
	obj := &memberObject{}
	obj.SetDefaultDomain(func() Domain { return d })

	require.True(t, obj.RegisterWithDomain(nil, obj))
	assert.Same(t, d, obj.ParentDomain().(*trackingDomain))
}

func TestMemberReRegisterMovesObjectBetweenDomains(t *testing.T) {
	first := newTrackingDomain()
	second := newTrackingDomain()
	obj := &memberObject{}
	require.True(t, obj.RegisterWithDomain(first, obj))

	// Moving to another domain must detach the object from the old one.
	require.True(t, obj.RegisterWithDomain(second, obj))
	assert.Same(t, second, obj.ParentDomain().(*trackingDomain))
	assert.False(t, first.tracked(obj))
	assert.True(t, second.tracked(obj))

	// Re-registering with the current parent changes nothing.
	require.True(t, obj.RegisterWithDomain(second, obj))
	assert.True(t, second.tracked(obj))
}

func TestMemberUnregisterMismatchedDomainIsNoOp(t *testing.T) {
	d := newTrackingDomain()
	other := newTrackingDomain()
	obj := &memberObject{}
	require.True(t, obj.RegisterWithDomain(d, obj))

	obj.UnregisterFromDomain(other, obj)
	assert.Same(t, d, obj.ParentDomain().(*trackingDomain))

	// nil clears unconditionally.
	obj.UnregisterFromDomain(nil, obj)
	assert.Nil(t, obj.ParentDomain())
}

func TestMemberUnregisterWhenNotRegistered(t *testing.T) {
	obj := &memberObject{}
	// Must be safe with no parent recorded.
	obj.UnregisterFromDomain(nil, obj)
	assert.Nil(t, obj.ParentDomain())
}
