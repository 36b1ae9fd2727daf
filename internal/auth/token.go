package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kalasetu/artist-tracker/internal/common"
)

// Claims carried inside access tokens.
type Claims struct {
	UserID   string
	Username string
	Role     string
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds an issuer with the given token lifetime. A zero ttl
// means the 24h default; a negative ttl issues already-expired tokens.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the given claims.
func (t *TokenIssuer) Issue(c Claims) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  c.UserID,
		"username": c.Username,
		"role":     c.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(t.ttl).Unix(),
	})
	return tok.SignedString(t.secret)
}

// Verify parses a token string and returns its claims, or ErrUnauthorized.
func (t *TokenIssuer) Verify(tokenString string) (Claims, error) {
	tok, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, common.NewAppError("AUTH_ERROR", "invalid token", common.ErrUnauthorized)
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, common.NewAppError("AUTH_ERROR", "malformed claims", common.ErrUnauthorized)
	}
	c := Claims{}
	if v, ok := mc["user_id"].(string); ok {
		c.UserID = v
	}
	if v, ok := mc["username"].(string); ok {
		c.Username = v
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	if c.UserID == "" {
		return Claims{}, common.NewAppError("AUTH_ERROR", "token missing user_id", common.ErrUnauthorized)
	}
	return c, nil
}
