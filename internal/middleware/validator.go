package middleware

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var requestIDPattern = regexp.MustCompile(`^\d{12}_[0-9a-f]{8}$`)

// ValidateRequestID checks the <yymmddHHMMSS>_<8 hex> id format
func ValidateRequestID(id string) error {
	if id == "" {
		return fmt.Errorf("request ID cannot be empty")
	}
	if !requestIDPattern.MatchString(id) {
		return fmt.Errorf("invalid request ID format")
	}
	return nil
}

// ValidateURL validates absolute http(s) URLs
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
