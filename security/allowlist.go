package security

import (
	"context"
	"fmt"
	"net/netip"

	"google.golang.org/grpc/peer"
)

// AllowList admits bridge callers whose peer address falls inside one of the
// configured prefixes. Game servers talk to the bridge directly, so forwarded
// headers are never consulted.
type AllowList struct {
	prefixes []netip.Prefix
}

// NewAllowList parses CIDRs (or bare addresses, treated as single hosts).
func NewAllowList(cidrs []string) (*AllowList, error) {
	prefixes, err := parsePrefixes(cidrs)
	if err != nil {
		return nil, fmt.Errorf("allowlist: invalid entry: %w", err)
	}
	return &AllowList{prefixes: prefixes}, nil
}

// Contains reports whether addr is admitted.
func (a *AllowList) Contains(addr netip.Addr) bool {
	for _, p := range a.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Allowed reports whether the gRPC peer stored in ctx is admitted. Calls
// without peer information are refused.
func (a *AllowList) Allowed(ctx context.Context) bool {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return false
	}
	addr, ok := HostOf(p.Addr.String())
	if !ok {
		return false
	}
	return a.Contains(addr)
}

func parsePrefixes(raw []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(raw))
	for _, s := range raw {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			addr, addrErr := netip.ParseAddr(s)
			if addrErr != nil {
				return nil, fmt.Errorf("%q: %w", s, err)
			}
			p = netip.PrefixFrom(addr, addr.BitLen())
		}
		out = append(out, p.Masked())
	}
	return out, nil
}
