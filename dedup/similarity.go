// Package dedup decides whether an incoming report describes an already-open
// issue. Candidates are narrowed with a cheap bounding-box store query, then
// judged one by one: precise distance, perceptual-hash match, text fallback.
package dedup

import (
	"math"
	"math/bits"
	"regexp"
	"strings"
)

// HammingInf is returned by HammingDistance when either hash is absent, so
// such pairs can never fall under any real threshold.
const HammingInf = math.MaxInt32

const earthRadiusMeters = 6371000

// HaversineMeters returns the great-circle distance between two points on a
// spherical Earth.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(v float64) float64 { return v * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// HammingDistance is the bit-level distance between two hex-encoded hashes,
// 4 bits per character. The shorter hash is left-padded with zero nibbles.
// Non-hex characters count as zero nibbles.
func HammingDistance(a, b string) int {
	if a == "" || b == "" {
		return HammingInf
	}

	if len(a) != len(b) {
		if len(a) < len(b) {
			a = strings.Repeat("0", len(b)-len(a)) + a
		} else {
			b = strings.Repeat("0", len(a)-len(b)) + b
		}
	}

	dist := 0
	for i := 0; i < len(a); i++ {
		dist += bits.OnesCount8(hexNibble(a[i]) ^ hexNibble(b[i]))
	}
	return dist
}

func hexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

var tokenSplit = regexp.MustCompile(`\W+`)

// TokenJaccard is the Jaccard similarity of the lower-cased word-token sets
// of two strings. Empty input on either side scores 0. An empty union is
// counted as size 1 to avoid dividing by zero.
func TokenJaccard(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	setA := tokenSet(a)
	setB := tokenSet(b)

	inter := 0
	for tok := range setA {
		if setB[tok] {
			inter++
		}
	}

	union := len(setB)
	for tok := range setA {
		if !setB[tok] {
			union++
		}
	}
	if union == 0 {
		union = 1
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenSplit.Split(strings.ToLower(s), -1) {
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}
