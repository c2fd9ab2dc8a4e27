package service

import (
	"context"
	"log/slog"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	"github.com/classpilot/classauth/internal/ports"
)

// RevokerOptions groups dependencies for Revoker.
type RevokerOptions struct {
	Provider ports.IdentityProvider
	Logger   *slog.Logger
}

// Revoker terminates sessions. Revocation is account-wide: every credential
// issued to the subject stops verifying, not just the one presented.
type Revoker struct {
	provider ports.IdentityProvider
	logger   *slog.Logger
}

// NewRevoker constructs a new Revoker.
func NewRevoker(opts RevokerOptions) *Revoker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Revoker{provider: opts.Provider, logger: logger}
}

// RevokeSession revokes all of the subject's credentials at the provider
// and returns the transaction clearing every trust cookie. The cookie
// clear happens on every path, so a request without a usable session still
// converges on the logged-out state; that case reports true, matching the
// idempotency of the operation.
func (r *Revoker) RevokeSession(ctx context.Context, cookies domainauth.CookieSet) (domainauth.CookieTxn, bool) {
	txn := domainauth.ClearAllTxn()

	if cookies.Session == "" {
		return txn, true
	}

	claims, err := r.provider.VerifySessionCredential(ctx, cookies.Session)
	if err != nil {
		// Already unusable; clearing the cookies is all that is left to do.
		r.logger.Info("revoking unverifiable session", slog.String("error", err.Error()))
		return txn, true
	}

	if err := r.provider.RevokeAllCredentials(ctx, claims.Subject); err != nil {
		r.logger.ErrorContext(ctx, "account-wide revocation failed",
			slog.String("subject", claims.Subject),
			slog.String("error", err.Error()))
		return txn, false
	}

	r.logger.InfoContext(ctx, "session revoked", slog.String("subject", claims.Subject))
	return txn, true
}
