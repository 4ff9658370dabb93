package token

import (
	"errors"
	"strconv"
	"time"

	autherrors "go-employee-mgmt/internal/auth/errors"
	"go-employee-mgmt/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the session token payload. The front end decodes id and role to
// pick a screen; the server re-verifies the signature on every request.
type Claims struct {
	UserID int64     `json:"id"`
	Role   rbac.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() rbac.Identity {
	return rbac.Identity{UserID: c.UserID, Role: c.Role}
}

// Remaining is how long the token stays valid after now.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Issue(userID int64, role rbac.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", autherrors.ErrTokenGenerationFailed.WithErr(err)
	}
	return signed, nil
}

func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherrors.ErrTokenExpired
		}
		return nil, autherrors.ErrInvalidToken.WithErr(err)
	}
	if !tok.Valid || claims.UserID == 0 || !claims.Role.Valid() {
		return nil, autherrors.ErrInvalidToken
	}
	return claims, nil
}
