package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/infra/config"
)

var ErrInvalidToken = errors.New("invalid token")

type Identity struct {
	UserID uuid.UUID
	Email  string
}

type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IdentityProvider issues and verifies HS256 access tokens.
type IdentityProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIdentityProvider(cfg *config.AuthConfig) *IdentityProvider {
	return &IdentityProvider{secret: []byte(cfg.JWTSecret), ttl: cfg.JWTTTL, now: time.Now}
}

func (p *IdentityProvider) Issue(userID, email string) (string, error) {
	now := p.now()
	claims := Claims{
		ID:    userID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("can't sign token, %v", err)
	}
	return token, nil
}

func (p *IdentityProvider) GetIdentity(tokenString string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id, %v", ErrInvalidToken, err)
	}

	return &Identity{UserID: userID, Email: claims.Email}, nil
}
