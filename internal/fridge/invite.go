package fridge

import (
	"crypto/rand"
	"strings"
)

// Invite codes are short, human-typeable, and case-normalized to upper.
const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// NewInviteCode generates a fresh 6-character uppercase alphanumeric code,
// drawn uniformly from the alphabet. Uniqueness is enforced by the store's
// unique index, not here.
func NewInviteCode() string {
	// Bytes >= 252 are rejected so 252 % 36 == 0 keeps the draw uniform.
	limit := byte(256 - 256%len(codeAlphabet))
	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(out) < codeLength {
		rand.Read(buf)
		for _, b := range buf {
			if b >= limit || len(out) == codeLength {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
		}
	}
	return string(out)
}

// NormalizeInviteCode trims and uppercases a caller-supplied code so that
// lookups are case-insensitive.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
