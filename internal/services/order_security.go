package services

import (
	"strings"
)

// ValidateHoneypot reports whether a submission looks human: the hidden field
// must be absent or empty.
func ValidateHoneypot(value *string) bool {
	return value == nil || *value == ""
}

// GenerateSubmissionIdentifier derives the rate-limit key for an order.
func GenerateSubmissionIdentifier(email, ip string) string {
	return strings.ToLower(email) + "-" + ip
}

// ClientIP picks the caller's address: the first X-Forwarded-For hop, then the
// socket address, then "unknown". Pass forwardedFor only when it was set by a
// trusted proxy.
func ClientIP(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}
	if remoteAddr != "" {
		return remoteAddr
	}
	return "unknown"
}
