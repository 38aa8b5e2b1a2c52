// Package domain resolves host names to addresses.
package domain

import (
	"context"
	"maps"
	"net/netip"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

var ErrDomainNotFound = errors.New("domain not found")

type Lookuper interface {
	LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error)
}

// mapLookuper resolves from a static table.
// Domains are matched case-insensitively.
type mapLookuper struct {
	set map[string][]netip.Addr
}

var _ Lookuper = (*mapLookuper)(nil)

func NewMapLookuper(set map[string][]netip.Addr) *mapLookuper {
	m := &mapLookuper{set: make(map[string][]netip.Addr, len(set))}
	for domain, addrs := range maps.All(set) {
		m.Set(domain, addrs)
	}
	return m
}

func (m *mapLookuper) LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error) {
	addrs, ok := m.set[strings.ToLower(domain)]
	if !ok {
		return nil, errors.Wrap(ErrDomainNotFound, domain)
	}
	return slices.Clone(addrs), nil
}

func (m *mapLookuper) Set(domain string, addrs []netip.Addr) {
	if len(addrs) == 0 {
		return
	}
	m.set[strings.ToLower(domain)] = slices.Clone(addrs)
}

// ParseOverride parses "host:addr" as used by curl's --resolve, without the port part.
// IPv6 addresses may be bracketed.
func ParseOverride(s string) (domain string, addr netip.Addr, err error) {
	domain, raw, found := strings.Cut(s, ":")
	if !found || domain == "" {
		return "", netip.Addr{}, errors.Errorf("override must be host:addr, got %q", s)
	}

	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	addr, err = netip.ParseAddr(raw)
	if err != nil {
		return "", netip.Addr{}, errors.Wrapf(err, "parsing address of %q", domain)
	}

	return domain, addr, nil
}
