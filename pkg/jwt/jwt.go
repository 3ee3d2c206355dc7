package jwt

import (
	"errors"
	"time"

	"github.com/christinepetrosyan/Timebook/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken TokenType = "access"
)

// Claims are issued by the identity service; this service only validates them.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
	TokenID   string    `json:"token_id"`
	jwt.RegisteredClaims
}

type JWTService struct {
	config config.JWTConfig
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// ValidateToken accepts HMAC-signed access tokens. When AccessExpiry is set, a
// token issued longer ago than that is refused even if its own expiry is later.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != AccessToken {
		return nil, errors.New("not an access token")
	}
	if s.config.AccessExpiry > 0 && claims.IssuedAt != nil && time.Since(claims.IssuedAt.Time) > s.config.AccessExpiry {
		return nil, errors.New("token is older than the allowed lifetime")
	}

	return claims, nil
}
