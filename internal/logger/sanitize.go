package logger

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum length for URL paths in logs
	MaxPathLength = 500
	// MaxErrorMessageLength is the maximum length for error messages in logs
	MaxErrorMessageLength = 1000
	// MaxDebugContentLength is the maximum length for GraphQL payloads logged in debug mode
	MaxDebugContentLength = 10000

	redacted = "[REDACTED]"
)

// credentialPattern matches JSON string members that carry secrets:
// the password variable of sign in/up and the session token they return.
var credentialPattern = regexp.MustCompile(`("(?i:password|token)"\s*:\s*)"(?:[^"\\]|\\.)*"`)

// SanitizePath sanitizes a URL path for safe logging
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString strips control characters and invalid UTF-8 from s and
// truncates it to maxLength bytes. A non-positive maxLength means MaxErrorMessageLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxErrorMessageLength
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

// SanitizeError sanitizes an error message for safe logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// RedactCredentials replaces password and token values in a JSON payload
func RedactCredentials(content string) string {
	return credentialPattern.ReplaceAllString(content, `${1}"`+redacted+`"`)
}

// SanitizeDebugContent prepares a GraphQL request or response body for debug logs.
// Credentials are redacted before truncation so a cut never exposes a partial secret.
func SanitizeDebugContent(content string) string {
	return SanitizeString(RedactCredentials(content), MaxDebugContentLength)
}
