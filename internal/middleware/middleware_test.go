package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var secret = []byte(strings.Repeat("k", 32))

func sign(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func whoami() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, "no user", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(email))
	})
}

func TestRequireAuth(t *testing.T) {
	valid := jwt.RegisteredClaims{
		Subject:   "s100201@student.fop",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	expired := jwt.RegisteredClaims{
		Subject:   "s100201@student.fop",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	noSubject := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + sign(t, valid, jwt.SigningMethodHS256, secret), http.StatusOK},
		{"expired", "Bearer " + sign(t, expired, jwt.SigningMethodHS256, secret), http.StatusUnauthorized},
		{"wrong key", "Bearer " + sign(t, valid, jwt.SigningMethodHS256, []byte(strings.Repeat("x", 32))), http.StatusUnauthorized},
		{"wrong alg", "Bearer " + sign(t, valid, jwt.SigningMethodHS512, secret), http.StatusUnauthorized},
		{"no subject", "Bearer " + sign(t, noSubject, jwt.SigningMethodHS256, secret), http.StatusUnauthorized},
	}
	h := NewAuthMiddleware(secret).RequireAuth(whoami())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "s100201@student.fop", rec.Body.String())
			}
		})
	}
}

func TestZapRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := chimw.RequestID(ZapRequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fine", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "/boom", entries[1].ContextMap()["path"])
}
