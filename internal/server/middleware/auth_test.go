package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/institute-portal/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	valid map[string]User
}

func (v *testTokenValidator) ValidateToken(tokenString string) (User, error) {
	user, ok := v.valid[tokenString]
	if !ok {
		return User{}, fmt.Errorf("invalid token")
	}
	return user, nil
}

func echoUser(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := GetUser(r)
		if err != nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(user.ID))
	})
}

func TestRequireAuth(t *testing.T) {
	validator := &testTokenValidator{valid: map[string]User{"good": {ID: "user-1"}}}
	handler := RequireAuth(validator)(echoUser(t))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid", "Bearer good", http.StatusOK, "user-1"},
		{"lowercase scheme", "bearer good", http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"no token", "Bearer", http.StatusUnauthorized, ""},
		{"extra parts", "Bearer good extra", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer bad", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/courses/x/enroll", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireAuth_NotConfigured(t *testing.T) {
	handler := RequireAuth(nil)(echoUser(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	validator := &testTokenValidator{valid: map[string]User{"good": {ID: "user-1"}}}
	handler := OptionalAuth(validator)(echoUser(t))

	for header, want := range map[string]int{
		"Bearer good": http.StatusOK,
		"Bearer bad":  http.StatusNoContent,
		"":            http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, header)
	}
}

func TestGetUser_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUser(req)
	assert.Error(t, err)
}

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		Email: "asha@example.com",
		Name:  "Asha",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://id.example.com",
			Audience:  jwt.ClaimStrings{"institute-portal"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestJWTVerifier(t *testing.T) {
	verifier := NewJWTVerifier(config.IdentityConfig{
		Secret:   testSecret,
		Issuer:   "https://id.example.com",
		Audience: "institute-portal",
	})
	require.NotNil(t, verifier)

	user, err := verifier.ValidateToken(signToken(t, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, User{ID: "user-1", Email: "asha@example.com", Name: "Asha"}, user)

	tests := []struct {
		name   string
		secret string
		mutate func(c *Claims)
	}{
		{"wrong secret", "ffffffffffffffffffffffffffffffff", func(_ *Claims) {}},
		{"expired", testSecret, func(c *Claims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) }},
		{"no expiry", testSecret, func(c *Claims) { c.ExpiresAt = nil }},
		{"wrong issuer", testSecret, func(c *Claims) { c.Issuer = "https://evil.example.com" }},
		{"wrong audience", testSecret, func(c *Claims) { c.Audience = jwt.ClaimStrings{"other"} }},
		{"no subject", testSecret, func(c *Claims) { c.Subject = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(&claims)
			_, err := verifier.ValidateToken(signToken(t, tt.secret, claims))
			assert.Error(t, err)
		})
	}

	_, err = verifier.ValidateToken("")
	assert.Error(t, err)
	_, err = verifier.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestJWTVerifier_RejectsOtherAlgorithms(t *testing.T) {
	verifier := NewJWTVerifier(config.IdentityConfig{Secret: testSecret})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, validClaims()).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestNewJWTVerifier_Disabled(t *testing.T) {
	assert.Nil(t, NewJWTVerifier(config.IdentityConfig{}))
}
