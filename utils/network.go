package utils

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateEndpoint parses a converter endpoint and checks it is an absolute
// http(s) URL
func ValidateEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint %q has no host", raw)
	}
	return u, nil
}

// IsLoopbackEndpoint detects endpoints served from the local machine
func IsLoopbackEndpoint(u *url.URL) bool {
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// IsPlaintextRemote reports whether uploads would leave the machine unencrypted
func IsPlaintextRemote(u *url.URL) bool {
	return u.Scheme == "http" && !IsLoopbackEndpoint(u)
}
