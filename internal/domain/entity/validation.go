package entity

import (
	"fmt"
	"net"
	"net/url"
)

// maxLinkLength defines the maximum allowed length for submitted links to prevent DoS attacks.
const maxLinkLength = 2048

// ValidateLink validates the format and safety of a submitted video link.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a valid host.
// It also blocks private IP addresses to prevent SSRF attacks, since the link is
// handed to an external downloader process.
// Returns a ValidationError if the link is invalid or empty.
func ValidateLink(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "link", Message: "link is required"}
	}

	if len(rawURL) > maxLinkLength {
		return &ValidationError{
			Field:   "link",
			Message: fmt.Sprintf("link must not exceed %d characters", maxLinkLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "link", Message: "link is not a valid URL"}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "link", Message: "link must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "link", Message: "link must have a valid host"}
	}

	// SSRF protection: block links resolving to private networks
	host := parsedURL.Hostname()
	if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
		return &ValidationError{Field: "link", Message: "link cannot point to private network"}
	}

	return nil
}

// isPrivateIP checks if an IP address is in a private or restricted range.
// This blocks:
// - localhost (127.0.0.0/8, ::1)
// - link-local addresses (169.254.0.0/16, fe80::/10) including cloud metadata endpoints
// - private networks (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	if ip.IsLinkLocalUnicast() {
		return true
	}
	return ip.IsPrivate()
}
