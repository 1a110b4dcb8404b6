package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleRenderer is the only role accepted on the renderer websocket
const RoleRenderer = "renderer"

// DefaultTokenTTL is how long a renderer token stays valid
const DefaultTokenTTL = 24 * time.Hour

var (
	ErrEmptySecret  = errors.New("auth: empty signing secret")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// JWTClaims represents the claims carried by a renderer token
type JWTClaims struct {
	RendererID string `json:"renderer_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateRendererToken signs a token that lets a renderer attach to the host
func GenerateRendererToken(secret []byte, rendererID string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := &JWTClaims{
		RendererID: rendererID,
		Role:       RoleRenderer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   rendererID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(secret []byte, tokenString string) (*JWTClaims, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleRenderer {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidToken, claims.Role)
	}
	if claims.RendererID == "" {
		return nil, fmt.Errorf("%w: missing renderer id", ErrInvalidToken)
	}

	return claims, nil
}
