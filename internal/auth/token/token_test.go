package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	customErrors "github.com/memeboard/memeboard/internal/auth/errors"
)

var testSecret = []byte("unit-test-secret")

func testClaims() Claims {
	iat := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Unix()
	return Claims{
		UserID:    42,
		Username:  "alice",
		Email:     "alice@example.com",
		IssuedAt:  iat,
		ExpiresAt: iat + 86400,
	}
}

func newCodec(t *testing.T) *Codec {
	c, err := NewCodec(testSecret)
	require.NoError(t, err)
	return c
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec(nil)
	require.True(t, customErrors.IsInternal(err))
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newCodec(t)
	raw, err := codec.Encode(testClaims())
	require.NoError(t, err)

	got, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, testClaims(), got)
}

// The wire format is contractual: header bytes, payload field order
// and the HMAC input must match what older issuers produced.
func TestCodec_WireFormat(t *testing.T) {
	codec := newCodec(t)
	raw, err := codec.Encode(testClaims())
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)

	enc := base64.RawURLEncoding
	header, err := enc.DecodeString(parts[0])
	require.NoError(t, err)
	require.Equal(t, `{"typ":"AUTH","alg":"HS256"}`, string(header))

	payload, err := enc.DecodeString(parts[1])
	require.NoError(t, err)
	require.Equal(t,
		`{"user_id":42,"username":"alice","email":"alice@example.com","iat":1785585600,"exp":1785672000}`,
		string(payload))

	mac := hmac.New(sha256.New, testSecret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	require.Equal(t, enc.EncodeToString(mac.Sum(nil)), parts[2])
}

// Flipping any single byte of any segment must fail decoding; a bit
// flip can never yield a silently different set of claims.
func TestCodec_TamperDetection(t *testing.T) {
	codec := newCodec(t)
	raw, err := codec.Encode(testClaims())
	require.NoError(t, err)

	for i := 0; i < len(raw); i++ {
		if raw[i] == '.' {
			continue
		}
		tampered := []byte(raw)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		_, err := codec.Decode(string(tampered))
		require.Error(t, err, "byte %d", i)
		require.True(t, customErrors.IsInvalidToken(err), "byte %d: %v", i, err)
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	codec := newCodec(t)
	other, err := NewCodec([]byte("a different secret"))
	require.NoError(t, err)

	raw, err := codec.Encode(testClaims())
	require.NoError(t, err)

	_, err = other.Decode(raw)
	require.True(t, customErrors.IsBadSignature(err))
}

func TestCodec_Malformed(t *testing.T) {
	codec := newCodec(t)
	for _, raw := range []string{
		"",
		"only-one-part",
		"two.parts",
		"a.b.c.d",
		"not.a.validtoken",
	} {
		_, err := codec.Decode(raw)
		require.Error(t, err, "token %q", raw)
		require.True(t, customErrors.IsInvalidToken(err), "token %q", raw)
	}
}

// A correctly signed token that is past its expiry still decodes;
// expiry is the caller's check.
func TestCodec_ExpiredStillDecodes(t *testing.T) {
	codec := newCodec(t)
	claims := testClaims()
	claims.ExpiresAt = claims.IssuedAt - 1
	raw, err := codec.Encode(claims)
	require.NoError(t, err)

	got, err := codec.Decode(raw)
	require.NoError(t, err)
	require.True(t, got.Expired(time.Now()))
}

func TestClaims_Expired(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	c := Claims{ExpiresAt: now.Unix()}
	require.False(t, c.Expired(now))
	require.True(t, c.Expired(now.Add(time.Second)))
	require.False(t, c.Expired(now.Add(-time.Second)))
}
