// utils/token.go
package utils

import "math/rand/v2"

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz"

// TokenLength is the fixed length of session and player tokens. Short
// human-readable tokens are kept for client compatibility; the registrar
// retries on collision instead of lengthening them.
const TokenLength = 6

// RandomToken returns a fresh lowercase-alphabetic token of n characters.
func RandomToken(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[rand.IntN(len(tokenAlphabet))]
	}
	return string(b)
}
