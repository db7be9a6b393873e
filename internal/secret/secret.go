// SPDX-License-Identifier: MPL-2.0

// Package secret generates random shared secrets such as the ILP secret.
package secret

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// Alphanumeric is the alphabet of generated secrets.
const Alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrInvalidLength is returned for a non-positive length.
var ErrInvalidLength = errors.New("secret length must be positive")

// Generate returns length characters drawn uniformly from Alphanumeric using
// crypto/rand.
func Generate(length int) (string, error) {
	return generate(rand.Reader, length)
}

func generate(r io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	alphabetSize := big.NewInt(int64(len(Alphanumeric)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(r, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read random data: %w", err)
		}
		out[i] = Alphanumeric[n.Int64()]
	}
	return string(out), nil
}
