package booktracker

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// MintTokenHash derives the opaque hash embedded in activation and reset
// links. The digest mixes the user id with a random nonce, so hashes look
// deterministic but cannot be reproduced from the id alone.
func MintTokenHash(userID string) string {
	sum := sha256.Sum256([]byte(userID + ":" + uuid.NewString()))
	return hex.EncodeToString(sum[:])
}
