package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type userContextKey struct{}

// AuthUser is the identity the auth collaborator supplies for a request.
type AuthUser struct {
	ID    string
	Email string
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 bearer token for the given user. Used by tests
// and local tooling; production tokens come from the auth service sharing
// the same secret.
func SignToken(secret string, user AuthUser, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Auth verifies the Bearer token and injects the authenticated user into the
// request context. Requests without a valid token proceed anonymously; the
// handlers decide which operations require identity.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := userFromHeader(secret, r.Header.Get("Authorization"))
			if err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userContextKey{}, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userFromHeader(secret, header string) (AuthUser, error) {
	if header == "" {
		return AuthUser{}, errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return AuthUser{}, errors.New("invalid authorization")
	}
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return AuthUser{}, errors.New("invalid token")
	}
	return AuthUser{ID: claims.Subject, Email: claims.Email}, nil
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (AuthUser, bool) {
	user, ok := ctx.Value(userContextKey{}).(AuthUser)
	return user, ok
}

// ContextWithUser injects a user identity. Test hook.
func ContextWithUser(ctx context.Context, user AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}
