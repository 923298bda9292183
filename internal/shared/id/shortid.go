// Package id generates Stripe-style prefixed identifiers for public resources.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the length of the random part of a short ID.
	DefaultLength = 14
)

const (
	PrefixPayment      = "pay"
	PrefixExtendedKey  = "xk"
	PrefixSubscription = "whs"
	PrefixEscrow       = "esc"
	PrefixLedger       = "ltx"
)

// Generate returns a cryptographically random Base62 string.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// New returns "prefix_<random>".
func New(prefix string) (string, error) {
	s, err := Generate(DefaultLength)
	if err != nil {
		return "", err
	}
	return prefix + "_" + s, nil
}

// MustNew is New for call sites where crypto/rand failing is unrecoverable.
func MustNew(prefix string) string {
	s, err := New(prefix)
	if err != nil {
		panic(err)
	}
	return s
}

// HasPrefix reports whether prefixedID is of the form "prefix_<something>".
func HasPrefix(prefixedID, prefix string) bool {
	p, rest, ok := strings.Cut(prefixedID, "_")
	return ok && p == prefix && rest != ""
}
