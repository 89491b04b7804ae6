package session

import (
	"errors"
	"time"

	"mapview_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenType = "map_session"

var errInvalidToken = errors.New("invalid session token")

// Tokens issues and verifies map session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token signer from the session configuration.
func NewTokens(cfg config.SessionConfig) *Tokens {
	return &Tokens{
		secret: []byte(cfg.GetSessionSecret()),
		ttl:    cfg.GetSessionTTL(),
		now:    time.Now,
	}
}

// Issue signs a token for sessionID and returns it with its expiry.
func (t *Tokens) Issue(sessionID string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := jwt.MapClaims{
		"sub":  sessionID,
		"type": tokenType,
		"jti":  uuid.NewString(),
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tokenObj.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, expiry and type of raw and returns the session ID.
func (t *Tokens) Verify(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return "", errInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != tokenType {
		return "", errInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errInvalidToken
	}
	return sub, nil
}
