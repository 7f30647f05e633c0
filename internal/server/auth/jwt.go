// Package auth issues and verifies the stateless session tokens of the
// gallery API. Tokens are HS256 JWTs carrying the user's identity claim and
// an absolute expiry. There is no refresh or revocation; expiry (or rotating
// the secret) is the only way a token stops working.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed lifetime of a session token.
const SessionTTL = 7 * 24 * time.Hour

// Claims is the identity claim carried by a session token.
type Claims struct {
	UserID    int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

type Manager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewManager(secretKey string) *Manager {
	return &Manager{secretKey: []byte(secretKey), ttl: SessionTTL, now: time.Now}
}

// Issue signs a token for u that expires SessionTTL from now.
func (m *Manager) Issue(u *models.User) (string, error) {
	now := m.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString. An empty token
// yields common.ErrUnauthenticated, anything else that does not verify
// yields common.ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrUnauthenticated
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID <= 0 {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>". It returns "" when the header has another shape.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}
