package covariate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashHex truncates a sha256 hex digest to the 8-character form used
// throughout the baseline filename scheme (spec.md §4.4).
func hashHex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:8]
}

// FootprintHash is a stable content hash over the ordered factor declaration
// plus covariate declaration (not values) — used as the hard-gate filename
// key. factorKeys should already be in their declared order.
func FootprintHash(factorKeys []string, decls Declarations) string {
	buf := make([]byte, 0, 256)
	for _, f := range factorKeys {
		buf = append(buf, []byte("factor:"+f+";")...)
	}
	for _, d := range decls {
		buf = append(buf, []byte(fmt.Sprintf("cov:%s:%s;", d.Key, d.Category))...)
	}
	return hashHex(string(buf))
}

// ValueHashes computes ordered per-declaration content hashes for a
// resolved profile, excluding informational covariates (spec.md §4.4:
// "informational covariates are excluded from the filename").
func ValueHashes(decls Declarations, profile Profile) []string {
	hashes := make([]string, 0, len(decls))
	for _, d := range decls {
		if d.Category == CategoryInformational {
			continue
		}
		v := profile[d.Key]
		hashes = append(hashes, hashHex(d.Key+"="+v.Render()))
	}
	return hashes
}
