package common

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewSourceID generates a unique source ID with the "src_" prefix.
func NewSourceID() string {
	return "src_" + uuid.New().String()
}

// NewJobID generates a unique job ID with the "job_" prefix.
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// DocumentID derives the stable, content-addressed document id for a
// canonical URL: a hex SHA-256 digest, truncated to a fixed length. The
// function is deterministic and total over valid absolute URLs, as §3
// requires of the URL -> id mapping.
func DocumentID(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])[:32]
}
