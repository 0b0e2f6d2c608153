package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// accessCodeLength is the fixed length of an access code: six uppercase hex
// characters, e.g. "A3F09C".
const accessCodeLength = 6

// newAccessCode draws a random code. Uniqueness is the caller's concern: the
// lifecycle retries against store collisions.
func newAccessCode() (string, error) {
	buf := make([]byte, accessCodeLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
