package validation

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

// ErrInvalidURL is wrapped by every rejection from FeedURLValidator.
var ErrInvalidURL = errors.New("invalid feed URL")

// FeedURLValidator checks and normalizes feed URLs typed by a user.
type FeedURLValidator struct {
	// AllowLocalhost permits localhost and loopback hosts.
	AllowLocalhost bool
	// AllowPrivateIPs permits private and link-local addresses.
	AllowPrivateIPs bool
	MaxLength       int
}

// NewFeedURLValidator blocks local and private hosts unless allowLocal is set.
func NewFeedURLValidator(allowLocal bool) *FeedURLValidator {
	return &FeedURLValidator{
		AllowLocalhost:  allowLocal,
		AllowPrivateIPs: allowLocal,
		MaxLength:       2048,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidURL, fmt.Sprintf(format, args...))
}

// ValidateAndNormalize returns the normalized form of input. A missing
// scheme defaults to https.
func (v *FeedURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", invalid("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", invalid("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", invalid("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", invalid("malformed URL: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", invalid("URL must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return "", invalid("URL must have a hostname")
	}

	if err := v.validateHost(parsed.Hostname()); err != nil {
		return "", err
	}
	if strings.Contains(parsed.Path, "..") {
		return "", invalid("directory traversal not allowed in path")
	}

	return parsed.String(), nil
}

func (v *FeedURLValidator) validateHost(hostname string) error {
	hostname = strings.ToLower(hostname)

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return invalid("localhost URLs are not permitted")
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		if addr.IsUnspecified() || addr == netip.AddrFrom4([4]byte{255, 255, 255, 255}) {
			return invalid("address %s is not routable", addr)
		}
		if !v.AllowLocalhost && addr.IsLoopback() {
			return invalid("loopback addresses are not permitted")
		}
		if !v.AllowPrivateIPs && isPrivate(addr) {
			return invalid("private IP addresses are not permitted")
		}
		return nil
	}

	if strings.Trim(hostname, ".") == "" || strings.Contains(hostname, "..") {
		return invalid("malformed hostname %q", hostname)
	}
	return nil
}

func isLocalhost(hostname string) bool {
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func isPrivate(addr netip.Addr) bool {
	return addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast()
}
