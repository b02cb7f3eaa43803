// Package imagehash is the perceptual hash provider: image file in, hex
// fingerprint out. Visually similar images produce hashes with a small
// hamming distance.
package imagehash

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/corona10/goimagehash"
)

// Compute fingerprints the image at path as a 64-bit perceptual hash rendered
// as 16 hex characters. Unreadable or corrupt files return an error; callers
// treat that as "no hash available", never as fatal.
func Compute(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", hash.GetHash()), nil
}
