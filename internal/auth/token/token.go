// Package token implements the self-contained bearer token:
// three dot-joined base64url segments (header, payload, signature)
// signed with HMAC-SHA256. The server keeps no state for issued
// tokens; validity is re-derivable from the bytes plus the secret.
//
// The wire format is fixed for interoperability with already-issued
// tokens: the header is the exact byte string
// {"typ":"AUTH","alg":"HS256"} and the payload serializes its fields
// in a fixed order with no extra whitespace.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	customErrors "github.com/memeboard/memeboard/internal/auth/errors"
)

const headerJSON = `{"typ":"AUTH","alg":"HS256"}`

// Claims is the token payload. Field order here is the wire order.
type Claims struct {
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Expired reports whether the claims are past their expiry at now.
// Decode deliberately does not check this; the caller distinguishes
// "expired" from "forged".
func (c Claims) Expired(now time.Time) bool {
	return now.Unix() > c.ExpiresAt
}

type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, customErrors.WrapInternal(errors.New("secret is empty"), "NewCodec")
	}
	return &Codec{secret: secret}, nil
}

func (c *Codec) Encode(claims Claims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", customErrors.WrapInternal(err, "encode claims")
	}

	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString([]byte(headerJSON)) + "." + enc.EncodeToString(payload)
	return signingInput + "." + enc.EncodeToString(c.sign(signingInput)), nil
}

// Decode verifies and parses a token. The signature is checked, in
// constant time, before any claim byte is trusted: a tampered token
// fails as ErrBadSignature without its payload ever being parsed.
// Expired-but-valid tokens decode successfully.
func (c *Codec) Decode(raw string) (Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Claims{}, customErrors.ErrMalformedToken
	}

	// Strict mode rejects non-canonical trailing bits, so two distinct
	// token strings can never decode to the same signature bytes.
	enc := base64.RawURLEncoding.Strict()
	supplied, err := enc.DecodeString(parts[2])
	if err != nil {
		return Claims{}, customErrors.ErrMalformedToken
	}
	expected := c.sign(parts[0] + "." + parts[1])
	if !hmac.Equal(supplied, expected) {
		return Claims{}, customErrors.ErrBadSignature
	}

	payload, err := enc.DecodeString(parts[1])
	if err != nil {
		return Claims{}, customErrors.ErrMalformedToken
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, customErrors.ErrMalformedToken
	}
	return claims, nil
}

func (c *Codec) sign(input string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(input))
	return mac.Sum(nil)
}
