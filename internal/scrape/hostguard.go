package scrape

import (
	"context"
	"net"
	"net/netip"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// blockedHosts are rejected by name before any address classification.
var blockedHosts = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
	"0.0.0.0":   {},
}

// lookupIPAddr is replaced in tests.
var lookupIPAddr = net.DefaultResolver.LookupIPAddr

// reservedNets cover special-purpose ranges that the netip predicates alone
// do not flag.
var reservedNets = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001:db8::/32"),
	netip.MustParsePrefix("fec0::/10"),
}

// validateTarget rejects URLs that could reach internal infrastructure: bad
// schemes, blocklisted names, and hosts whose literal or resolved addresses
// are private, loopback, link-local, multicast, unspecified, or reserved.
// Resolution failures allow the target; the fetch will surface them properly.
// This is an advisory SSRF guard, not an isolation boundary.
func validateTarget(ctx context.Context, u *url.URL) *Error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return errf(KindInvalidScheme, "Only HTTP/S URLs are supported.")
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return errf(KindInvalidScheme, "Invalid URL.")
	}
	if _, ok := blockedHosts[host]; ok {
		return errf(KindBlockedHost, "Local targets are not allowed.")
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if isDisallowedAddr(addr) {
			return errf(KindBlockedHost, "Private or internal addresses are blocked.")
		}
		return nil
	}

	addrs, err := lookupIPAddr(ctx, host)
	if err != nil {
		zap.L().Debug("hostguard: resolution failed, allowing",
			zap.String("host", host),
			zap.Error(err),
		)
		return nil
	}
	for _, a := range addrs {
		addr, ok := netip.AddrFromSlice(a.IP)
		if !ok {
			continue
		}
		if isDisallowedAddr(addr) {
			return errf(KindBlockedHost, "Private or internal addresses are blocked.")
		}
	}

	return nil
}

func isDisallowedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return true
	}
	for _, p := range reservedNets {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
