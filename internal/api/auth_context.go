package api

import (
	"context"
	"net/http"
	"strings"

	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	userIDKey     ctxKey = "userID"
	authErrKey    ctxKey = "authErr"
	remoteAddrKey ctxKey = "remoteAddr"
)

// GetUserID returns the authenticated user ID from context.
// A request that presented a bad token gets that token's error (expired
// tokens answer TOKEN_EXPIRED); one with no token gets UNAUTHORIZED.
func GetUserID(ctx context.Context) (string, error) {
	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		return userID, nil
	}
	if err, ok := ctx.Value(authErrKey).(error); ok {
		return "", err
	}
	return "", domainerrors.Unauthorized("authentication required")
}

// remoteAddr returns the client address recorded by authMiddleware.
func remoteAddr(ctx context.Context) string {
	addr, _ := ctx.Value(remoteAddrKey).(string)
	return addr
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// authMiddleware returns a middleware that validates Bearer tokens and stores user ID in context.
// If no token is present or invalid, continues without user in context.
// Handlers use GetUserID to check authentication.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(context.WithValue(r.Context(), remoteAddrKey, r.RemoteAddr))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				ctx := context.WithValue(r.Context(), authErrKey,
					domainerrors.Unauthorized("invalid authorization header format"))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				ctx := context.WithValue(r.Context(), authErrKey, err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx := setUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
