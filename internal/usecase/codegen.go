// File: internal/usecase/codegen.go
package usecase

import (
	"crypto/rand"
	"io"
)

// DigitSource returns a string of n random decimal digits.
type DigitSource func(n int) (string, error)

// randomDigits draws n digits from crypto/rand. Bytes >= 250 are discarded
// so every digit is uniform over 0-9.
func randomDigits(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4+1)
	for len(out) < n {
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 250 {
				continue
			}
			out = append(out, '0'+b%10)
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
