// Package tokenx implements the compact signed tokens used for sessions.
//
// A token is "base64url(JSON claims) + '.' + base64url(HMAC-SHA256 signature)"
// signed with a shared secret. The format is stateless and symmetric: any
// process holding the secret can verify a token without a round trip, at the
// cost of access tokens not being individually revocable before expiry.
// Refresh tokens compensate by carrying a jti that is persisted and revocable.
package tokenx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type discriminates access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// maxContentLength bounds the decoded claims payload. Anything larger is
// attacker-controlled garbage, not a token we issued.
const maxContentLength = 4096

// ErrInvalidToken is returned for every verification failure: malformed
// structure, bad signature, wrong type, or expiry. Callers must not be able
// to distinguish these cases.
var ErrInvalidToken = errors.New("tokenx: invalid token")

// Claims is the signed content of a token.
type Claims struct {
	Subject   string `json:"sub"`
	Type      Type   `json:"typ"`
	TokenID   string `json:"jti,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Codec issues and verifies tokens under one secret. Construct it explicitly
// so tests can use distinct secrets.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec returns a codec signing with the given secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// IssueAccess mints a short-lived access token for subject.
func (c *Codec) IssueAccess(subject string, ttl time.Duration) (string, error) {
	now := c.now().Unix()
	return c.sign(Claims{
		Subject:   subject,
		Type:      TypeAccess,
		IssuedAt:  now,
		ExpiresAt: now + int64(ttl.Seconds()),
	})
}

// IssueRefresh mints a refresh token for subject with a fresh jti. The jti
// and expiry are returned so the caller can persist the refresh record.
func (c *Codec) IssueRefresh(subject string, ttl time.Duration) (token, tokenID string, expiresAt time.Time, err error) {
	now := c.now()
	tokenID = uuid.NewString()
	expiresAt = now.Add(ttl)

	token, err = c.sign(Claims{
		Subject:   subject,
		Type:      TypeRefresh,
		TokenID:   tokenID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	return token, tokenID, expiresAt, err
}

// Verify checks the token signature, shape, type and expiry and returns the
// decoded claims. Every failure mode collapses into ErrInvalidToken.
func (c *Codec) Verify(token string, expected Type) (Claims, error) {
	content, sig, ok := strings.Cut(token, ".")
	if !ok || content == "" || sig == "" || len(content) > maxContentLength {
		return Claims{}, ErrInvalidToken
	}

	gotSig, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal(gotSig, c.signature(content)) {
		return Claims{}, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(content)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}

	if claims.Subject == "" || claims.Type != expected {
		return Claims{}, ErrInvalidToken
	}
	if expected == TypeRefresh && claims.TokenID == "" {
		return Claims{}, ErrInvalidToken
	}
	if claims.ExpiresAt <= c.now().Unix() {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

func (c *Codec) sign(claims Claims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	content := base64.RawURLEncoding.EncodeToString(payload)
	sig := base64.RawURLEncoding.EncodeToString(c.signature(content))
	return content + "." + sig, nil
}

func (c *Codec) signature(content string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(content))
	return mac.Sum(nil)
}
