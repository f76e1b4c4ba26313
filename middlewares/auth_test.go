package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var secret = []byte("test-secret")

func sign(t *testing.T, claims *Claims, key []byte) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAuthMiddleware(t *testing.T) {
	valid := &Claims{UserID: "u1", Role: "SELLER", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	expired := &Claims{UserID: "u1", Role: "SELLER", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}}

	tests := []struct {
		name   string
		header string
		role   []string
		want   int
	}{
		{"valid", "Bearer " + sign(t, valid, secret), []string{"seller"}, http.StatusOK},
		{"missing", "", nil, http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, expired, secret), nil, http.StatusUnauthorized},
		{"wrong key", "Bearer " + sign(t, valid, []byte("other")), nil, http.StatusUnauthorized},
		{"wrong role", "Bearer " + sign(t, valid, secret), []string{"ADMIN"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *Claims
			var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = GetAuthenticatedUser(r)
			})
			if tt.role != nil {
				h = RoleBasedMiddleware(tt.role...)(h)
			}
			h = AuthMiddleware(secret)(h)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if tt.want == http.StatusOK && (seen == nil || seen.UserID != "u1") {
				t.Errorf("expected claims in context, got %+v", seen)
			}
		})
	}
}
