package domain

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// The process-wide tag registry. Domains register themselves here to be
// discoverable by name; one process-wide lock, distinct from every
// per-domain lock, guards all access.

type publicEntry struct {
	domain Domain
	tag    string
}

var (
	publicDomainsMu sync.Mutex
	publicDomains   []publicEntry
)

// AddPublicDomain registers d in the process-wide registry under tag. The
// same domain may be registered under several tags, and several domains may
// share one tag; GetDomain disambiguates by index. Entries are removed when
// the domain's Cleanup runs or by RemovePublicDomain; a domain discarded
// without Cleanup leaves its entry behind.
func AddPublicDomain(d Domain, tag string) {
	if d == nil {
		return
	}
	publicDomainsMu.Lock()
	defer publicDomainsMu.Unlock()
	publicDomains = append(publicDomains, publicEntry{domain: d, tag: tag})
	logrus.WithFields(logrus.Fields{
		"function": "AddPublicDomain",
		"tag":      tag,
		"entries":  len(publicDomains),
	}).Debug("domain registered in public registry")
}

// GetDomain returns the index-th registered domain whose tag matches, or nil
// when there is no such entry.
func GetDomain(tag string, index int) Domain {
	publicDomainsMu.Lock()
	defer publicDomainsMu.Unlock()
	n := 0
	for _, entry := range publicDomains {
		if entry.tag != tag {
			continue
		}
		if n == index {
			return entry.domain
		}
		n++
	}
	return nil
}

// RemovePublicDomain removes every registry entry for d and returns the
// number of entries removed.
func RemovePublicDomain(d Domain) int {
	if d == nil {
		return 0
	}
	publicDomainsMu.Lock()
	defer publicDomainsMu.Unlock()
	kept := publicDomains[:0]
	removed := 0
	for _, entry := range publicDomains {
		if entry.domain == d {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	publicDomains = kept
	return removed
}

// PublicDomainCount returns the number of registry entries under tag.
func PublicDomainCount(tag string) int {
	publicDomainsMu.Lock()
	defer publicDomainsMu.Unlock()
	n := 0
	for _, entry := range publicDomains {
		if entry.tag == tag {
			n++
		}
	}
	return n
}
