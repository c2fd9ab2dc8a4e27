package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	"github.com/classpilot/classauth/internal/ports"
	"github.com/classpilot/classauth/internal/service"
)

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Issuer   *service.Issuer
	Verifier *service.Verifier
	Revoker  *service.Revoker
	Flow     ports.LoginFlow
	Jar      CookieJar
	Logger   *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Issuer:   services.Issuer,
		Verifier: services.Verifier,
		Revoker:  services.Revoker,
		Flow:     services.Flow,
		Jar:      services.Jar,
		Logger:   services.Logger,
	}

	mux.Handle("GET /auth/login", http.HandlerFunc(authHandlers.Login))
	mux.Handle("GET /auth/callback", http.HandlerFunc(authHandlers.Callback))
	mux.Handle("POST /auth/session", http.HandlerFunc(authHandlers.Establish))
	mux.Handle("GET /auth/status", http.HandlerFunc(authHandlers.Status))
	mux.Handle("POST /auth/logout", http.HandlerFunc(authHandlers.Logout))

	mux.Handle("GET /auth/me", RequireAuth(services.Verifier, services.Jar)(http.HandlerFunc(meHandler)))
	mux.Handle("GET /auth/me/verified", RequireFreshAuth(services.Verifier, services.Jar)(http.HandlerFunc(meHandler)))
	mux.Handle("GET /admin/ping", RequireRole(services.Verifier, services.Jar, domainauth.RoleAdmin)(http.HandlerFunc(pingHandler)))

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// meHandler returns the verified profile placed in context by middleware.
func meHandler(w http.ResponseWriter, r *http.Request) {
	profile, ok := ProfileFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: http.ErrNoCookie})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"role":  profile.Role,
		"plan":  profile.Plan,
		"name":  profile.Name,
		"email": profile.Email,
		"photo": profile.Photo,
	})
}

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
