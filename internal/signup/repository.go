// AngelaMos | 2026
// repository.go

package signup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vBaustad/tripplannerhq/internal/core"
)

// UpsertParams replaces the staged signup data for an email. The stored
// setup-intent id is always cleared so a fresh intent must be attached.
type UpsertParams struct {
	Email            string
	Name             *string
	PasswordHash     string
	PlanPriceID      string
	StripeCustomerID string
	ExpiresUTC       time.Time
}

type Repository interface {
	UpsertByEmail(ctx context.Context, params UpsertParams) (*SignupSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SignupSession, error)
	SetSetupIntentID(ctx context.Context, id uuid.UUID, setupIntentID string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountSessions(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const sessionColumns = `
	id, email, name, password_hash, plan_price_id, stripe_customer_id,
	setup_intent_id, expires_utc, created_utc, updated_utc`

func (r *repository) UpsertByEmail(
	ctx context.Context,
	params UpsertParams,
) (*SignupSession, error) {
	query := fmt.Sprintf(`
		INSERT INTO signup_sessions (
			email, name, password_hash, plan_price_id,
			stripe_customer_id, expires_utc
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			plan_price_id = EXCLUDED.plan_price_id,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			expires_utc = EXCLUDED.expires_utc,
			setup_intent_id = NULL,
			updated_utc = now()
		RETURNING %s`, sessionColumns)

	var s SignupSession
	err := r.db.GetContext(
		ctx, &s, query,
		params.Email,
		params.Name,
		params.PasswordHash,
		params.PlanPriceID,
		params.StripeCustomerID,
		params.ExpiresUTC,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert signup session: %w", err)
	}
	return &s, nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*SignupSession, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM signup_sessions WHERE id = $1`,
		sessionColumns,
	)

	var s SignupSession
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get signup session: %w", err)
	}
	return &s, nil
}

func (r *repository) SetSetupIntentID(
	ctx context.Context,
	id uuid.UUID,
	setupIntentID string,
) error {
	const query = `
		UPDATE signup_sessions
		SET setup_intent_id = $2, updated_utc = now()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, setupIntentID)
	if err != nil {
		return fmt.Errorf("set setup intent id: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM signup_sessions WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete signup session: %w", err)
	}
	return nil
}

func (r *repository) CountSessions(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM signup_sessions`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count signup sessions: %w", err)
	}
	return count, nil
}
