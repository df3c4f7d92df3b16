// Package password wraps argon2id hashing of account passwords. The
// work factor is fixed at the library defaults; every hash embeds a
// fresh random salt, so hashing the same password twice yields
// different strings.
package password

import (
	"github.com/alexedwards/argon2id"

	customErrors "github.com/memeboard/memeboard/internal/auth/errors"
)

type Hasher struct {
	params *argon2id.Params
	pepper string
}

// NewHasher returns a Hasher with the default argon2id parameters.
// pepper is a server-side secret appended to every password before
// hashing; it may be empty.
func NewHasher(pepper string) *Hasher {
	return &Hasher{params: argon2id.DefaultParams, pepper: pepper}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := argon2id.CreateHash(plaintext+h.pepper, h.params)
	if err != nil {
		return "", customErrors.WrapInternal(err, "hash password")
	}
	return hash, nil
}

// Verify reports whether plaintext matches the encoded hash. A
// malformed hash is treated as a mismatch, never as a fault.
func (h *Hasher) Verify(plaintext, encodedHash string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plaintext+h.pepper, encodedHash)
	return err == nil && ok
}
