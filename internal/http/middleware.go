package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
)

// VerifierInterface defines the verification operations the middleware needs.
type VerifierInterface interface {
	QuickIdentity(cookies domainauth.CookieSet) *domainauth.Profile
	SecureIdentity(ctx context.Context, cookies domainauth.CookieSet) (*domainauth.Profile, error)
	CriticalIdentity(ctx context.Context, cookies domainauth.CookieSet) (*domainauth.Profile, error)
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth attaches the quick-tier profile snapshot to the request
// context when present. Unauthenticated requests continue without one.
// Suitable for rendering paths that only personalize, never authorize.
func OptionalAuth(verifier VerifierInterface, jar CookieJar) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if profile := verifier.QuickIdentity(jar.ReadSet(r)); profile != nil {
				r = r.WithContext(SetProfileInContext(r.Context(), profile))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth verifies the session at the secure tier and rejects requests
// without a live session with 401.
func RequireAuth(verifier VerifierInterface, jar CookieJar) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile := secureProfile(w, r, verifier, jar)
			if profile == nil {
				return
			}
			next.ServeHTTP(w, r.WithContext(SetProfileInContext(r.Context(), profile)))
		})
	}
}

// RequireRole verifies at the secure tier and additionally requires the
// role hierarchically. Missing session is 401, insufficient role is 403.
func RequireRole(verifier VerifierInterface, jar CookieJar, required domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile := secureProfile(w, r, verifier, jar)
			if profile == nil {
				return
			}
			if !domainauth.Authorize(*profile, domainauth.Requirement{Role: required}) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetProfileInContext(r.Context(), profile)))
		})
	}
}

// RequireFreshAuth verifies at the critical tier: a live session whose
// credential is younger than the freshness window. Stale sessions get 401
// with a distinct error code so clients can prompt for re-login instead of
// treating it as logged out.
func RequireFreshAuth(verifier VerifierInterface, jar CookieJar) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookies := jar.ReadSet(r)
			profile, err := verifier.CriticalIdentity(r.Context(), cookies)
			if err != nil {
				WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "verification_failed", Err: err})
				return
			}
			if profile == nil {
				errCode := "authentication_required"
				if cookies.Session != "" {
					errCode = "reauthentication_required"
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: errCode,
					Err:     errors.New("fresh authentication required"),
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetProfileInContext(r.Context(), profile)))
		})
	}
}

// secureProfile runs secure-tier verification and writes the failure
// response itself, returning nil when the request must not proceed.
func secureProfile(w http.ResponseWriter, r *http.Request, verifier VerifierInterface, jar CookieJar) *domainauth.Profile {
	profile, err := verifier.SecureIdentity(r.Context(), jar.ReadSet(r))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "verification_failed", Err: err})
		return nil
	}
	if profile == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return nil
	}
	return profile
}
