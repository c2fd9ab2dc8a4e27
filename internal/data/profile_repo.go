package data

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/classpilot/classauth/internal/data/pgxutil"
	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	apperrors "github.com/classpilot/classauth/internal/errors"
	"github.com/classpilot/classauth/internal/ports"
)

// ProfileRepo provides database operations for user profiles. It is the
// canonical store behind the secure and critical verification tiers; the
// session core only reads profiles and creates them on first use.
type ProfileRepo struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(db *sql.DB, logger *slog.Logger) *ProfileRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileRepo{DB: db, Logger: logger}
}

// profileRow is the scan target for the profiles table.
type profileRow struct {
	Subject string `db:"subject"`
	Role    string `db:"role"`
	Plan    string `db:"plan"`
}

// Get fetches the profile document for a subject.
// Returns ErrProfileNotFound when no row exists.
func (r *ProfileRepo) Get(ctx context.Context, subject string) (domainauth.ProfileDoc, error) {
	if subject == "" {
		return domainauth.ProfileDoc{}, apperrors.Validation("subject is required")
	}

	var row profileRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, `
			SELECT subject, role, plan FROM profiles WHERE subject = $1
		`, subject)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var scanErr error
		row, scanErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[profileRow])
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.ProfileDoc{}, ports.ErrProfileNotFound
		}
		return domainauth.ProfileDoc{}, apperrors.MapDBError(err)
	}

	return r.toDoc(ctx, row), nil
}

// Create inserts a profile document for a subject. Inserting an existing
// subject is a conflict.
func (r *ProfileRepo) Create(ctx context.Context, subject string, doc domainauth.ProfileDoc) error {
	if subject == "" {
		return apperrors.Validation("subject is required")
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO profiles (subject, role, plan, created_at)
			VALUES ($1, $2, $3, now())
		`, subject, string(doc.Role), doc.Plan)
		return execErr
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// toDoc converts a row into a ProfileDoc, flagging unknown role values.
// Unknown roles keep their raw string but carry zero privileges; the log
// line gives operators visibility into bad data instead of silent demotion.
func (r *ProfileRepo) toDoc(ctx context.Context, row profileRow) domainauth.ProfileDoc {
	role, err := domainauth.ParseRole(row.Role)
	if err != nil {
		r.Logger.WarnContext(ctx, "profile has unknown role", "subject", row.Subject, "role", row.Role)
	}
	return domainauth.ProfileDoc{Role: role, Plan: row.Plan}
}
