package domain

import "sync"

// Member is the mixin capability for objects that attach to a domain as
// their container. A member tracks at most one parent domain, with no
// ownership implied in either direction. Embed it and pass the embedding
// object as obj so the domain can track it through RegisterObject.
type Member struct {
	mu            sync.Mutex
	parent        Domain
	defaultDomain func() Domain
}

// SetDefaultDomain installs the fallback used when RegisterWithDomain is
// called with a nil domain.
func (m *Member) SetDefaultDomain(fn func() Domain) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultDomain = fn
}

// ParentDomain returns the domain this member is registered with, or nil.
func (m *Member) ParentDomain() Domain {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parent
}

// RegisterWithDomain records d as the member's parent and registers obj with
// it. When d is nil the default domain is used; the call reports false when
// no domain is available. A member tracks at most one parent: registering
// with a different domain first unregisters obj from the previous one, and
// re-registering with the current parent is a no-op.
func (m *Member) RegisterWithDomain(d Domain, obj any) bool {
	m.mu.Lock()
	fallback := m.defaultDomain
	previous := m.parent
	m.mu.Unlock()
	if d == nil && fallback != nil {
		d = fallback()
	}
	if d == nil {
		return false
	}
	if previous == d {
		return true
	}
	if previous != nil {
		previous.UnregisterObject(obj)
	}
	d.RegisterObject(obj)
	m.mu.Lock()
	m.parent = d
	m.mu.Unlock()
	return true
}

// UnregisterFromDomain clears the parent reference if it matches d, or
// unconditionally when d is nil, unregistering obj from the parent. Safe to
// call when not registered.
func (m *Member) UnregisterFromDomain(d Domain, obj any) {
	m.mu.Lock()
	parent := m.parent
	if parent == nil || (d != nil && d != parent) {
		m.mu.Unlock()
		return
	}
	m.parent = nil
	m.mu.Unlock()
	parent.UnregisterObject(obj)
}
