package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	"github.com/classpilot/classauth/internal/ports"
	"github.com/classpilot/classauth/internal/service"
)

// IssuerInterface defines the session establishment operation handlers need.
type IssuerInterface interface {
	EstablishSession(ctx context.Context, assertion string) (*service.EstablishResult, error)
}

// RevokerInterface defines the session revocation operation handlers need.
type RevokerInterface interface {
	RevokeSession(ctx context.Context, cookies domainauth.CookieSet) (domainauth.CookieTxn, bool)
}

// AuthHandlers provides HTTP handlers for session operations.
type AuthHandlers struct {
	Issuer   IssuerInterface
	Verifier VerifierInterface
	Revoker  RevokerInterface
	Flow     ports.LoginFlow
	Jar      CookieJar
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	authURL, state, nonce, err := h.Flow.Begin(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_failed", Err: err})
		return
	}

	h.setFlowCookies(w, flowCookieParams{State: state, Nonce: nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles the provider callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_code", Err: errors.New("authorization code is required")})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_state", Err: errors.New("state parameter is required")})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state", Err: errors.New("invalid or missing state parameter")})
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_nonce", Err: errors.New("missing nonce cookie")})
		return
	}

	assertion, err := h.Flow.Exchange(r.Context(), ports.ExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "exchange_failed", Err: err})
		return
	}

	result, err := h.Issuer.EstablishSession(r.Context(), assertion)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "session establishment failed", slog.String("error", err.Error()))
		WriteAppError(w, err)
		return
	}

	h.Jar.Apply(w, result.Cookies)
	h.clearFlowCookies(w)

	redirectURI := "/"
	if c, cookieErr := r.Cookie("oauth_redirect"); cookieErr == nil {
		redirectURI = safeRedirectPath(c.Value)
	}
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// establishRequest is the body of POST /auth/session.
type establishRequest struct {
	Assertion string `json:"assertion"`
}

// Establish handles direct session establishment from a client-held
// assertion, the non-browser counterpart of Callback.
// POST /auth/session.
func (h *AuthHandlers) Establish(w http.ResponseWriter, r *http.Request) {
	var req establishRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Assertion == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_assertion", Err: errors.New("assertion is required")})
		return
	}

	result, err := h.Issuer.EstablishSession(r.Context(), req.Assertion)
	if err != nil {
		h.logger().InfoContext(r.Context(), "session establishment rejected", slog.String("error", err.Error()))
		WriteAppError(w, err)
		return
	}

	h.Jar.Apply(w, result.Cookies)
	WriteJSON(w, http.StatusOK, map[string]any{"role": result.Role})
}

// Status returns the current authentication status from the quick tier.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	profile := h.Verifier.QuickIdentity(h.Jar.ReadSet(r))
	if profile == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"role":  profile.Role,
			"plan":  profile.Plan,
			"name":  profile.Name,
			"email": profile.Email,
			"photo": profile.Photo,
		},
	})
}

// Logout revokes the session account-wide and clears every trust cookie.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	txn, ok := h.Revoker.RevokeSession(r.Context(), h.Jar.ReadSet(r))
	h.Jar.Apply(w, txn)

	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "revocation_failed", Err: errors.New("could not revoke session credentials")})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// flowCookieParams groups the temporary login-flow cookie values.
type flowCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

const flowCookieTTL = 10 * time.Minute

// setFlowCookies stores state, nonce, and the post-login redirect for the
// duration of the browser round-trip to the provider. SameSite is Lax, not
// Strict, because the provider redirect is a cross-site navigation.
func (h *AuthHandlers) setFlowCookies(w http.ResponseWriter, p flowCookieParams) {
	for name, value := range map[string]string{
		"oauth_state":    p.State,
		"oauth_nonce":    p.Nonce,
		"oauth_redirect": p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.Jar.Domain,
			HttpOnly: true,
			Secure:   h.Jar.Secure,
			MaxAge:   int(flowCookieTTL / time.Second),
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *AuthHandlers) clearFlowCookies(w http.ResponseWriter) {
	for _, name := range []string{"oauth_state", "oauth_nonce", "oauth_redirect"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   h.Jar.Domain,
			HttpOnly: true,
			Secure:   h.Jar.Secure,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0).UTC(),
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// safeRedirectPath restricts post-login redirects to local paths.
func safeRedirectPath(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	return u.String()
}
