// Package codes produces human-shareable meeting codes like
// "abc-defg-hij": three hyphen-separated lowercase chunks drawn from a
// cryptographically strong source. Collisions are the meeting
// repository's problem (unique constraint + retry), not this package's.
package codes

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

var chunkLengths = [3]int{3, 4, 3}

// Generate returns a fresh meeting code in the xxx-xxxx-xxx shape.
func Generate() string {
	var b strings.Builder
	for i, n := range chunkLengths {
		if i > 0 {
			b.WriteByte('-')
		}
		for j := 0; j < n; j++ {
			b.WriteByte(alphabet[randIndex()])
		}
	}
	return b.String()
}

func randIndex() int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken;
		// there is no meaningful recovery at this layer.
		panic(err)
	}
	return int(n.Int64())
}
