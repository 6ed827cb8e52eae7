// README: Crypto-random order token generator.
package registry

import (
	"crypto/rand"

	"wajba/internal/types"
)

const (
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tokenLength   = 15
)

// NewToken returns a 15-char alphanumeric order id. 62^15 keeps the
// collision probability negligible; the store still enforces uniqueness.
func NewToken() types.ID {
	var b [tokenLength]byte
	_, _ = rand.Read(b[:])
	for i := range b {
		b[i] = tokenAlphabet[int(b[i])%len(tokenAlphabet)]
	}
	return types.ID(b[:])
}

// NewDigitCode returns an n-digit verification code.
func NewDigitCode(n int) string {
	const digits = "0123456789"
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = digits[int(b[i])%len(digits)]
	}
	return string(b)
}
