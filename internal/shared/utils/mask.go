package utils

import "strings"

// MaskEmail masks an email address for safe logging.
// Example: "user@example.com" -> "u***@example.com"
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "***"
	}
	if len(local) <= 1 {
		return local + "***@" + domain
	}
	return local[:1] + "***@" + domain
}

// MaskKey shortens extended key material to its head and tail so log lines
// identify a key without reproducing it.
func MaskKey(key string) string {
	if len(key) <= 16 {
		return "***"
	}
	return key[:12] + "..." + key[len(key)-4:]
}
