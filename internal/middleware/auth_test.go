package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthInjectsUserFromValidToken(t *testing.T) {
	const secret = "test-secret"
	token, err := SignToken(secret, AuthUser{ID: "user-1", Email: "donor@example.com"}, time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	var got AuthUser
	var found bool
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/wells", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("expected user in context")
	}
	if got.ID != "user-1" || got.Email != "donor@example.com" {
		t.Fatalf("got user %+v", got)
	}
}

func TestAuthProceedsAnonymously(t *testing.T) {
	const secret = "test-secret"
	wrong, err := SignToken("other-secret", AuthUser{ID: "user-1"}, time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	expired, err := SignToken(secret, AuthUser{ID: "user-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + wrong},
		{"expired", "Bearer " + expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found bool
			handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, found = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/wells", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, anonymous requests must pass through", rec.Code)
			}
			if found {
				t.Fatal("expected no user in context")
			}
		})
	}
}
