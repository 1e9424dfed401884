package utils

import (
	"net"
	"strings"
)

func CoalesceString(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// IsLocalHost reports whether host (with or without port) names the local machine.
func IsLocalHost(host string) bool {
	h := host
	if hostOnly, _, err := net.SplitHostPort(host); err == nil {
		h = hostOnly
	}
	h = strings.Trim(strings.ToLower(h), "[]")
	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// ProfileURL builds the public profile link for a worker.
func ProfileURL(host, workerID string) string {
	scheme := "https"
	if IsLocalHost(host) {
		scheme = "http"
	}
	return scheme + "://" + host + ProfilePathPrefix + workerID
}
