package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const actorKey contextKey = "actor_id"

// Auth resolves the acting user from a bearer token issued by the auth
// service (we only verify, never issue). Internal jobs may use the
// X-User-ID header instead. Handlers that need an actor reject requests
// where neither was present; read-only/webhook routes work without one.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID := ""

		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			if sub, err := subjectFromToken(strings.TrimPrefix(auth, "Bearer ")); err == nil {
				actorID = sub
			}
		}
		if actorID == "" {
			actorID = r.Header.Get("X-User-ID")
		}

		ctx := context.WithValue(r.Context(), actorKey, actorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func subjectFromToken(tokenString string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.GetSubject()
}

// ActorID returns the acting user resolved by Auth, or "".
func ActorID(ctx context.Context) string {
	actorID, _ := ctx.Value(actorKey).(string)
	return actorID
}
