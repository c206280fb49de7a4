// Package familycode generates the short linkage codes personnel hand to
// their families. Codes are the shared secret of the linkage protocol, so
// they come from crypto/rand, never math/rand.
package familycode

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is the fixed code alphabet: uppercase letters and digits.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the fixed code length. Six characters keeps the code
// human-transcribable while leaving ~2 billion combinations.
const Length = 6

// New returns a fresh random code of Length characters from Alphabet.
// Bytes at or above the largest multiple of the alphabet size below 256 are
// rejected, so every character is equally likely.
func New() (string, error) {
	const limit = byte(len(Alphabet) * (256 / len(Alphabet)))

	code := make([]byte, 0, Length)
	buf := make([]byte, Length)
	for len(code) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("familycode: read random: %w", err)
		}
		for _, b := range buf {
			if len(code) == Length {
				break
			}
			if b >= limit {
				continue
			}
			code = append(code, Alphabet[int(b)%len(Alphabet)])
		}
	}
	return string(code), nil
}

// Valid reports whether s has the exact shape of a generated code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
