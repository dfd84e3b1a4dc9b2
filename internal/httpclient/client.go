// Package httpclient builds the HTTP client used to fetch remote
// descriptors. It refuses to reach loopback, private and link-local
// addresses, directly or through redirects.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/teranos/callgen/errors"
)

// MaxRedirects bounds redirect chains.
const MaxRedirects = 10

// Options configures New.
type Options struct {
	Timeout time.Duration
	// AllowPrivate disables the address checks, e.g. for a descriptor
	// server on localhost.
	AllowPrivate bool
}

// New returns a client for descriptor fetches.
func New(opts Options) *http.Client {
	c := &http.Client{Timeout: opts.Timeout}
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= MaxRedirects {
			return errors.Newf("stopped after %d redirects", MaxRedirects)
		}
		if err := ValidateURL(req.URL, opts.AllowPrivate); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}
	if opts.AllowPrivate {
		return c
	}

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	c.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, errors.Wrap(err, "invalid address")
			}
			ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to resolve host %q", host)
			}
			for _, ip := range ips {
				if IsBlocked(ip) {
					return nil, errors.Newf("address %s of %s is blocked", ip, host)
				}
			}
			// Dial the checked address, not the name, so a second lookup
			// cannot swap it.
			return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].String(), port))
		},
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
	}
	return c
}

// ValidateURL checks scheme and host before a request is made.
func ValidateURL(u *url.URL, allowPrivate bool) error {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return errors.Newf("scheme %q not allowed", u.Scheme)
	}
	if u.User != nil {
		return errors.New("URL must not carry credentials")
	}
	host := u.Hostname()
	if host == "" {
		return errors.New("URL missing hostname")
	}
	if allowPrivate {
		return nil
	}
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return errors.New("localhost access blocked")
	}
	if ip, err := netip.ParseAddr(host); err == nil && IsBlocked(ip) {
		return errors.Newf("address %s is blocked", ip)
	}
	return nil
}

// IsBlocked reports addresses a fetch must not reach.
func IsBlocked(ip netip.Addr) bool {
	ip = ip.Unmap()
	return !ip.IsValid() ||
		ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified() ||
		ip.Is4() && ip.As4()[0] == 0 ||
		ip.Is4() && ip.As4()[0] >= 240
}
