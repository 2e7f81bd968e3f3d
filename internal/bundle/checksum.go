package bundle

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Ensure SHA512 available for fingerprint calculation.
	_ "crypto/sha512"
)

// fingerprintFunction is used to calculate archive fingerprints.
const fingerprintFunction crypto.Hash = crypto.SHA512

var errHashUnavailable = errors.New("hash function unavailable")

// Fingerprint returns the base64-encoded SHA-512 checksum of the file at path.
// Because archives are byte-reproducible, equal fingerprints mean equal
// content and deployment tooling can skip redundant uploads.
func Fingerprint(path string) (string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}

	if !fingerprintFunction.Available() {
		return "", fmt.Errorf("fingerprint calculation not possible: %w", errHashUnavailable)
	}

	hasher := fingerprintFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return "", fmt.Errorf("calculate fingerprint: %w", err)
	}

	return base64.StdEncoding.EncodeToString(hasher.Sum(nil)), nil
}
