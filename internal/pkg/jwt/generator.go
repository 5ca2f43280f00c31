// internal/pkg/jwt/generator.go
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	secret   []byte
	issuer   string
	audience string
	Ttl      time.Duration
}

func NewGenerator(secret []byte, issuer, audience string, ttl time.Duration) *Generator {
	return &Generator{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		Ttl:      ttl,
	}
}

// Generate creates a new signed JWT with the given parameters and returns the
// token string together with its jti.
func (g *Generator) Generate(userID int64, role, purpose string, ttl time.Duration, extraData map[string]interface{}) (string, string, error) {
	if len(g.secret) == 0 {
		return "", "", fmt.Errorf("jwt generator has empty signing secret")
	}

	now := time.Now()
	jti := ulid.Make().String()
	if ttl <= 0 {
		ttl = g.Ttl
	}

	claims := &Claims{
		UserID:         userID,
		Role:           role,
		SessionPurpose: purpose,
		ExtraData:      extraData,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(g.secret)
	return signed, jti, err
}

// GenerateAccessToken generates a standard access token
func (g *Generator) GenerateAccessToken(userID int64, role string) (string, string, error) {
	return g.Generate(userID, role, "access", g.Ttl, nil)
}

// GenerateRefreshToken generates a refresh token (longer TTL). Refresh
// tokens carry no role; they are only exchanged for new access tokens.
func (g *Generator) GenerateRefreshToken(userID int64) (string, string, error) {
	return g.Generate(userID, "", "refresh", 30*24*time.Hour, nil)
}
