package auth

import (
	"net/mail"
	"strings"
)

const (
	maxLocalPartLen = 64
	maxDomainLen    = 253
	maxLabelLen     = 63
)

// IsWellFormedEmail reports whether s is a bare local@domain address.
//
// Display names ("Jane <jane@example.com>"), surrounding whitespace,
// non-ASCII local parts and single-label domains ("jane@localhost") are
// rejected. Every domain label must be letters, digits and hyphens, with no
// hyphen at either end.
func IsWellFormedEmail(s string) bool {
	if s == "" {
		return false
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}

	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return false
	}
	local, domain := s[:at], s[at+1:]

	if len(local) > maxLocalPartLen || !isPrintableASCII(local) {
		return false
	}
	return isValidDomain(domain)
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] <= ' ' || s[i] > '~' {
			return false
		}
	}
	return true
}

func isValidDomain(domain string) bool {
	if len(domain) > maxDomainLen {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !isValidLabel(label) {
			return false
		}
	}
	return true
}

func isValidLabel(label string) bool {
	if label == "" || len(label) > maxLabelLen {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}
