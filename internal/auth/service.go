package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed, expired or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidSignature is returned when a webhook body does not match its signature.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// AppMetadata mirrors the identity provider's app_metadata claim.
type AppMetadata struct {
	Roles []string `json:"roles,omitempty"`
}

// Claims are the bearer token claims issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
}

// HasRole reports whether the token carries the role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.AppMetadata.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type webhookClaims struct {
	jwt.RegisteredClaims
	SHA256 string `json:"sha256"`
}

// Service verifies bearer tokens and webhook signatures. Both are HS256 JWTs
// signed with secrets shared with the identity provider.
type Service struct {
	jwtSecret     []byte
	webhookSecret []byte
	now           func() time.Time
}

// NewService builds a token service. An empty webhook secret disables
// webhook signature checks.
func NewService(jwtSecret, webhookSecret string) *Service {
	return &Service{jwtSecret: []byte(jwtSecret), webhookSecret: []byte(webhookSecret), now: time.Now}
}

// Sign issues an access token. The identity provider normally does this;
// it is exposed for tooling and tests.
func (s *Service) Sign(userID, email string, ttl time.Duration, roles ...string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:       email,
		AppMetadata: AppMetadata{Roles: roles},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// Verify parses an access token and returns its claims.
func (s *Service) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, s.keyFunc(s.jwtSecret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// SignWebhook produces the signature header for a webhook body.
func (s *Service) SignWebhook(body []byte) (string, error) {
	sum := sha256.Sum256(body)
	claims := webhookClaims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(s.now())},
		SHA256:           hex.EncodeToString(sum[:]),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.webhookSecret)
}

// VerifyWebhook checks that signature was issued for body.
func (s *Service) VerifyWebhook(signature string, body []byte) error {
	if len(s.webhookSecret) == 0 {
		return nil
	}
	var claims webhookClaims
	parsed, err := jwt.ParseWithClaims(signature, &claims, s.keyFunc(s.webhookSecret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidSignature
	}
	sum := sha256.Sum256(body)
	if claims.SHA256 != hex.EncodeToString(sum[:]) {
		return ErrInvalidSignature
	}
	return nil
}

func (s *Service) keyFunc(secret []byte) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) {
		return secret, nil
	}
}
