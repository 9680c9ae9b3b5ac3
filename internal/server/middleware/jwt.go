package middleware

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonathan/institute-portal/internal/config"
)

// Claims are the identity provider's token claims. The subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with the identity provider's shared secret.
type JWTVerifier struct {
	config config.IdentityConfig
}

// NewJWTVerifier creates a verifier. It returns nil when verification is not configured.
func NewJWTVerifier(cfg config.IdentityConfig) *JWTVerifier {
	if !cfg.Enabled() {
		return nil
	}
	return &JWTVerifier{config: cfg}
}

// ValidateToken validates a token and returns the user it identifies.
func (v *JWTVerifier) ValidateToken(tokenString string) (User, error) {
	if tokenString == "" {
		return User{}, fmt.Errorf("token string is empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.config.Leeway),
		jwt.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.config.Secret), nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return User{}, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return User{}, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return User{}, fmt.Errorf("malformed token: %w", err)
		}
		return User{}, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return User{}, fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" {
		return User{}, fmt.Errorf("token has no subject")
	}

	return User{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}
