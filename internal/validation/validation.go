// Package validation checks user-supplied search terms and the remote
// image URLs the server is asked to fetch.
package validation

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxKeywordLength is the longest search term accepted, in characters.
const MaxKeywordLength = 100

var (
	ErrEmptyKeyword   = errors.New("keyword is required")
	ErrKeywordTooLong = errors.New("keyword is too long")
	ErrKeywordChars   = errors.New("keyword contains control characters")
	ErrUnsafeURL      = errors.New("unsafe url")
)

// NormalizeKeyword trims a search term, collapses inner whitespace and
// lowercases it so reservations are case-insensitive.
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.Join(strings.Fields(keyword), " "))
}

// ValidateKeyword reports why a normalized keyword is unusable, or nil.
func ValidateKeyword(keyword string) error {
	if keyword == "" {
		return ErrEmptyKeyword
	}
	if utf8.RuneCountInString(keyword) > MaxKeywordLength {
		return ErrKeywordTooLong
	}
	for _, r := range keyword {
		if unicode.IsControl(r) {
			return ErrKeywordChars
		}
	}
	return nil
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

var metadataIPs = []net.IP{
	net.ParseIP("169.254.169.254"),
	net.ParseIP("168.63.129.16"),
}

// IsPrivateIP checks if an IP address is in a private/reserved range.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsPrivate() || ip.IsUnspecified() {
		return true
	}
	for _, m := range metadataIPs {
		if ip.Equal(m) {
			return true
		}
	}
	return false
}

// IsPrivateHost checks if a hostname resolves to a private IP address.
// Unresolvable hosts are reported as private.
func IsPrivateHost(host string) (bool, error) {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return true, err
	}
	for _, ip := range ips {
		if IsPrivateIP(ip) {
			return true, nil
		}
	}
	return false, nil
}

// CheckDownloadURL returns an ErrUnsafeURL-wrapping error unless the
// URL is an http(s) URL on a public host.
func CheckDownloadURL(urlStr string) error {
	if ok, msg := ValidateURL(urlStr); !ok {
		return &URLError{URL: urlStr, Reason: msg}
	}

	u, _ := url.Parse(urlStr)
	private, err := IsPrivateHost(u.Host)
	if err != nil {
		return &URLError{URL: urlStr, Reason: "Cannot resolve hostname"}
	}
	if private {
		return &URLError{URL: urlStr, Reason: "URL points to a private or reserved IP address"}
	}
	return nil
}

// URLError describes a rejected download URL.
type URLError struct {
	URL    string
	Reason string
}

func (e *URLError) Error() string { return e.Reason + ": " + e.URL }

func (e *URLError) Unwrap() error { return ErrUnsafeURL }
