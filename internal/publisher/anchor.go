package publisher

import (
	"fmt"
	"math/rand"
)

// exploreAnchorSeed fixes the PRNG seed for EXPLORE-mode anchor generation
// so two runs over the same sample count produce the same anchor sequence
// without persisting any extra state.
const exploreAnchorSeed = 42

// AnchorSequence produces n deterministic 8-hex-character anchors, one per
// EXPLORE sample block, so diff tools can re-sync two reports.
func AnchorSequence(n int) []string {
	r := rand.New(rand.NewSource(exploreAnchorSeed))
	anchors := make([]string, n)
	for i := range anchors {
		anchors[i] = fmt.Sprintf("%08x", r.Uint32())
	}
	return anchors
}
