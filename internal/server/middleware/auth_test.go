package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClaims struct {
	subject string
}

func (c *testClaims) GetSubject() (string, error) {
	return c.subject, nil
}

type testTokenValidator struct {
	validTokens map[string]string
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]string)}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (SubjectGetter, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}
	subject, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &testClaims{subject: subject}, nil
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["valid-test-token"] = "recruiter-1"

	var got string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := GetSubject(r)
		require.NoError(t, err)
		got = subject
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	req.Header.Set("Authorization", "Bearer valid-test-token")
	w := httptest.NewRecorder()

	AuthMiddleware(validator)(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "recruiter-1", got)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["good"] = "recruiter-1"
	validator.validTokens["anonymous"] = ""

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing header", authHeader: ""},
		{name: "missing Bearer prefix", authHeader: "good"},
		{name: "only Bearer", authHeader: "Bearer"},
		{name: "empty token", authHeader: "Bearer "},
		{name: "wrong scheme", authHeader: "Basic good"},
		{name: "extra parts", authHeader: "Bearer good extra"},
		{name: "unknown token", authHeader: "Bearer nope"},
		{name: "empty subject", authHeader: "Bearer anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				called = true
			})

			req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			AuthMiddleware(validator)(handler).ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
		})
	}
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["tok"] = "recruiter-1"

	for _, scheme := range []string{"bearer", "BeArEr", "BEARER"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", scheme+"  tok")
		w := httptest.NewRecorder()

		AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code, scheme)
	}
}

func TestGetSubject(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetSubject(req)
	assert.Error(t, err)

	req = req.WithContext(context.WithValue(req.Context(), SubjectKey(), 42))
	_, err = GetSubject(req)
	assert.Error(t, err)

	req = req.WithContext(context.WithValue(req.Context(), SubjectKey(), "recruiter-2"))
	subject, err := GetSubject(req)
	require.NoError(t, err)
	assert.Equal(t, "recruiter-2", subject)
}
