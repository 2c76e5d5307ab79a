// Package security holds the address handling shared by the record cache and
// the bridge: normalizing host-reported addresses for identity comparison and
// restricting which hosts may reach the bridge.
package security

import (
	"net"
	"net/netip"
	"strings"
)

// HostOf parses s as an IP address, stripping any port and IPv6 zone and
// unmapping IPv4-in-IPv6 forms so that "::ffff:1.2.3.4" and "1.2.3.4:5154"
// both yield 1.2.3.4.
func HostOf(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}

	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}

	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap().WithZone(""), true
}

// SameHost reports whether a and b name the same host. Parseable addresses
// are compared after HostOf normalization; anything else (for example a
// hostname reported by the game server) falls back to exact string
// equality. No other matching is attempted.
func SameHost(a, b string) bool {
	ipA, okA := HostOf(a)
	ipB, okB := HostOf(b)
	if okA && okB {
		return ipA == ipB
	}
	if okA != okB {
		return false
	}
	return a == b
}
