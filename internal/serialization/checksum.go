package serialization

import (
	"crypto/sha256"
	"hash"
	"io"
)

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ComputeChecksumReader computes the SHA-256 checksum of the next n bytes of r.
// Returns io.ErrUnexpectedEOF if r ends early.
func ComputeChecksumReader(r io.Reader, n int64) ([32]byte, error) {
	h := sha256.New()
	copied, err := io.CopyN(h, r, n)
	if err != nil {
		if copied < n && err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return [32]byte{}, err
	}
	return sum(h), nil
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored [32]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}

func sum(h hash.Hash) [32]byte {
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
