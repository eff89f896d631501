package session

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// TokenLen is the fixed width of an auth token in raw bytes.
const TokenLen = 32

// ErrInvalidTokenLength is returned by the AuthToken constructors when the
// supplied material does not decode to exactly TokenLen bytes.
var ErrInvalidTokenLength = errors.New("feagi-core: auth token must be 32 bytes")

// AuthToken is an opaque 32-byte credential. Its String/Debug forms never
// expose the full value; only the first and last 4 hex characters are
// shown, matching how the rest of the token is redacted everywhere else in
// the system (logs, debug HTTP surface, error messages).
type AuthToken struct {
	raw [TokenLen]byte
}

// NewAuthTokenFromRaw constructs an AuthToken from exactly TokenLen raw bytes.
func NewAuthTokenFromRaw(raw []byte) (AuthToken, error) {
	if len(raw) != TokenLen {
		return AuthToken{}, ErrInvalidTokenLength
	}
	var t AuthToken
	copy(t.raw[:], raw)
	return t, nil
}

// NewAuthTokenFromHex decodes a hex-encoded 32-byte token.
func NewAuthTokenFromHex(s string) (AuthToken, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return AuthToken{}, fmt.Errorf("feagi-core: decoding hex auth token: %w", err)
	}
	return NewAuthTokenFromRaw(raw)
}

// NewAuthTokenFromBase64 decodes a standard-base64-encoded 32-byte token.
func NewAuthTokenFromBase64(s string) (AuthToken, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return AuthToken{}, fmt.Errorf("feagi-core: decoding base64 auth token: %w", err)
	}
	return NewAuthTokenFromRaw(raw)
}

// Equal compares two tokens in constant time.
func (t AuthToken) Equal(other AuthToken) bool {
	return subtle.ConstantTimeCompare(t.raw[:], other.raw[:]) == 1
}

// redacted renders the stable hex encoding with the middle masked out,
// showing only the first 4 and last 4 characters.
func (t AuthToken) redacted() string {
	full := hex.EncodeToString(t.raw[:])
	if len(full) <= 8 {
		return "****"
	}
	return full[:4] + "..." + full[len(full)-4:]
}

// String implements fmt.Stringer with the redacted form.
func (t AuthToken) String() string {
	return t.redacted()
}

// GoString implements fmt.GoStringer so %#v also redacts.
func (t AuthToken) GoString() string {
	return "session.AuthToken{" + t.redacted() + "}"
}
