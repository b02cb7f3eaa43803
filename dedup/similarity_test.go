package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHammingDistanceIdentical(t *testing.T) {
	assert.Equal(t, 0, HammingDistance("c3a1f0b2", "c3a1f0b2"))
}

func TestHammingDistanceSymmetric(t *testing.T) {
	a, b := "ff00ab12", "0f10ab13"
	assert.Equal(t, HammingDistance(a, b), HammingDistance(b, a))
}

func TestHammingDistanceCountsBits(t *testing.T) {
	// f ^ 0 = 1111, one nibble differs by all four bits.
	assert.Equal(t, 4, HammingDistance("f000", "0000"))
	assert.Equal(t, 1, HammingDistance("0001", "0000"))
	assert.Equal(t, 16, HammingDistance("ffff", "0000"))
}

func TestHammingDistancePadsShorterInput(t *testing.T) {
	// "ff" against "00ff" left-pads to "00ff" vs "00ff".
	assert.Equal(t, 0, HammingDistance("ff", "00ff"))
	assert.Equal(t, 8, HammingDistance("ff", "ff00"))
}

func TestHammingDistanceMissingInput(t *testing.T) {
	assert.Equal(t, HammingInf, HammingDistance("", "abcd"))
	assert.Equal(t, HammingInf, HammingDistance("abcd", ""))
	assert.Equal(t, HammingInf, HammingDistance("", ""))
}

func TestHaversineZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, HaversineMeters(12.9716, 77.5946, 12.9716, 77.5946))
}

func TestHaversineOneDegreeOfLatitude(t *testing.T) {
	// One degree along a meridian on the 6371 km sphere is ~111.19 km.
	d := HaversineMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 50)
}

func TestHaversineSymmetric(t *testing.T) {
	d1 := HaversineMeters(12.9716, 77.5946, 13.0827, 80.2707)
	d2 := HaversineMeters(13.0827, 80.2707, 12.9716, 77.5946)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestTokenJaccardIdenticalText(t *testing.T) {
	assert.Equal(t, 1.0, TokenJaccard("a b c", "a b c"))
}

func TestTokenJaccardEmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, TokenJaccard("", "x"))
	assert.Equal(t, 0.0, TokenJaccard("x", ""))
}

func TestTokenJaccardDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, TokenJaccard("a b", "c d"))
}

func TestTokenJaccardCaseAndPunctuation(t *testing.T) {
	// Same token sets after lower-casing and splitting on non-word runs.
	assert.Equal(t, 1.0, TokenJaccard("Pothole, on MAIN street!", "pothole on main street"))
}

func TestTokenJaccardPartialOverlap(t *testing.T) {
	// {a b c} vs {b c d}: 2 shared, 4 in the union.
	assert.InDelta(t, 0.5, TokenJaccard("a b c", "b c d"), 1e-9)
}
