package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/partnerhub/partnerhub/internal/auth"
	"github.com/partnerhub/partnerhub/internal/model"
)

const (
	// minAuthDuration is the minimum time to spend on auth to prevent timing attacks.
	minAuthDuration = 200 * time.Millisecond
)

// UserFinder looks up a user by email. A nil user with a nil error
// means the email is unknown.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// IdentityCache caches verified credentials keyed by a hash of the
// presented credential pair.
type IdentityCache interface {
	GetIdentity(ctx context.Context, cacheKey string) (*auth.Identity, error)
	SetIdentity(ctx context.Context, cacheKey string, id *auth.Identity) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Users  UserFinder
	Cache  IdentityCache
}

// Auth returns a middleware that authenticates API requests with HTTP
// Basic credentials. Verified identities are cached so the argon2
// verification cost is paid once per credential pair, not per request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			email, password, ok := r.BasicAuth()
			if !ok || email == "" || password == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_credentials"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check cache first
			cacheKey := auth.QuickHash(email + ":" + password)
			if cfg.Cache != nil {
				identity, _ := cfg.Cache.GetIdentity(r.Context(), cacheKey)
				if identity != nil {
					noteAuthenticatedUser(r.Context(), identity.UserID)
					ctx := auth.ContextWithIdentity(r.Context(), identity)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			user, err := cfg.Users.GetByEmail(r.Context(), email)
			if err != nil {
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Unknown email, disabled account and bad password all fail
			// the same way to prevent enumeration.
			if user == nil || !user.Enabled {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_credentials"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			match, err := auth.VerifyPassword(password, user.PasswordHash)
			if err != nil || !match {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_credentials"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			identity := &auth.Identity{
				UserID: user.ID,
				Email:  user.Email,
			}

			if cfg.Cache != nil {
				_ = cfg.Cache.SetIdentity(r.Context(), cacheKey, identity)
			}

			cfg.Logger.Info("authentication successful",
				slog.Int64("user_id", identity.UserID),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			noteAuthenticatedUser(r.Context(), identity.UserID)
			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="api"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"status":401,"error":"Unauthorized","message":"invalid or missing credentials"}`))
}
