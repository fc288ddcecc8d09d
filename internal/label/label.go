// Package label draws the random single-letter subdomain labels used for the
// tunnel's A and NS records.
package label

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Source yields a uniform index in [0, n).
type Source func(n int) int

// DefaultSource draws from crypto/rand and falls back to math/rand/v2 if the
// system source fails, so the tool stays usable on exotic platforms.
func DefaultSource(n int) int {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return mrand.IntN(n)
	}
	return int(i.Int64())
}

// Generate returns one lowercase a-z rune from src (DefaultSource when nil).
// When excluding is non-zero the draw is rejection-sampled until it differs;
// with 25/26 acceptance the loop terminating is a practical certainty.
func Generate(src Source, excluding rune) rune {
	if src == nil {
		src = DefaultSource
	}
	for {
		c := rune(alphabet[src(len(alphabet))])
		if c != excluding {
			return c
		}
	}
}
