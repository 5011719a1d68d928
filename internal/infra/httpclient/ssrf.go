package httpclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ErrBlockedDestination is returned for URLs or addresses the image
// fetcher must not reach.
var ErrBlockedDestination = errors.New("destination not allowed")

const maxRedirects = 10

var (
	metadataIPs = []netip.Addr{
		netip.MustParseAddr("169.254.169.254"), // AWS, GCP, Azure
		netip.MustParseAddr("100.100.100.200"), // Alibaba
		netip.MustParseAddr("192.0.0.192"),     // Oracle
		netip.MustParseAddr("fd00:ec2::254"),   // AWS IPv6
	}
	metadataHosts = []string{
		"metadata.google.internal",
		"metadata.azure.com",
		"instance-data",
	}
	internalSuffixes = []string{
		".local", ".internal", ".corp", ".lan", ".intranet",
		".test", ".localhost", ".cluster.local",
	}
	blockedPrefixes = []netip.Prefix{
		netip.MustParsePrefix("0.0.0.0/8"),
		netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
		netip.MustParsePrefix("198.18.0.0/15"),
	}
	allowedPorts = map[string]bool{"": true, "80": true, "443": true, "8080": true, "8443": true}
)

// Guard decides which destinations outbound image fetches may reach.
// AllowPrivate lifts every address check; only tests and the local CLI
// set it.
type Guard struct {
	AllowPrivate bool
}

// CheckURL validates scheme, host and port before a request is made.
func (g Guard) CheckURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrBlockedDestination, u.Scheme)
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrBlockedDestination)
	}
	if u.User != nil {
		return fmt.Errorf("%w: credentials in url", ErrBlockedDestination)
	}
	if g.AllowPrivate {
		return nil
	}
	if !allowedPorts[u.Port()] {
		return fmt.Errorf("%w: port %s", ErrBlockedDestination, u.Port())
	}
	if host == "localhost" {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, host)
	}
	for _, m := range metadataHosts {
		if host == m {
			return fmt.Errorf("%w: metadata host %s", ErrBlockedDestination, host)
		}
	}
	for _, suffix := range internalSuffixes {
		if strings.HasSuffix(host, suffix) {
			return fmt.Errorf("%w: internal domain %s", ErrBlockedDestination, host)
		}
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return checkAddr(addr)
	}
	return nil
}

// control runs after DNS resolution, so rebinding a public name to a
// private address is still caught.
func (g Guard) control(network, address string, _ syscall.RawConn) error {
	if g.AllowPrivate {
		return nil
	}
	if network != "tcp4" && network != "tcp6" {
		return fmt.Errorf("%w: network %s", ErrBlockedDestination, network)
	}
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, address)
	}
	if !allowedPorts[fmt.Sprint(ap.Port())] {
		return fmt.Errorf("%w: port %d", ErrBlockedDestination, ap.Port())
	}
	return checkAddr(ap.Addr())
}

func checkAddr(addr netip.Addr) error {
	addr = addr.Unmap()
	switch {
	case addr.IsLoopback(), addr.IsPrivate(), addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(), addr.IsMulticast(), addr.IsUnspecified():
		return fmt.Errorf("%w: address %s", ErrBlockedDestination, addr)
	}
	for _, m := range metadataIPs {
		if addr == m {
			return fmt.Errorf("%w: metadata address %s", ErrBlockedDestination, addr)
		}
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return fmt.Errorf("%w: address %s", ErrBlockedDestination, addr)
		}
	}
	return nil
}

// NewGuardedClient returns a client for untrusted URLs on its own transport,
// separate from the shared API pool.
func NewGuardedClient(timeout time.Duration, g Guard) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   g.control,
	}
	transport := &http.Transport{
		// No proxy: the dial hook must see the real destination.
		Proxy:               nil,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     120 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return g.CheckURL(req.URL)
		},
	}
}
