// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vBaustad/tripplannerhq/internal/core"
)

// SubscriptionFields is the processor-owned slice of the user record. All-nil
// fields clear the mirrored subscription state.
type SubscriptionFields struct {
	SubscriptionID               *string
	SubscriptionPriceID          *string
	SubscriptionStatus           *string
	SubscriptionCurrentPeriodEnd *time.Time
}

// PromoteParams carries the staged credentials and the resolved billing state
// used to create or update the account during signup activation.
type PromoteParams struct {
	Email                        string
	Name                         *string
	PasswordHash                 string
	StripeCustomerID             string
	SubscriptionID               string
	SubscriptionPriceID          string
	SubscriptionStatus           string
	SubscriptionCurrentPeriodEnd *time.Time
}

// ProfileUpdate distinguishes "leave the column alone" from "set it", so a
// blank display name can clear the stored value to NULL.
type ProfileUpdate struct {
	SetName      bool
	Name         *string
	SetCurrency  bool
	HomeCurrency *string
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(
		ctx context.Context,
		id uuid.UUID,
		update ProfileUpdate,
	) (*User, error)
	SetStripeCustomerID(
		ctx context.Context,
		id uuid.UUID,
		customerID *string,
	) (*User, error)
	UpdateSubscriptionFields(
		ctx context.Context,
		id uuid.UUID,
		fields SubscriptionFields,
	) (*User, error)
	PromoteFromSignup(
		ctx context.Context,
		params PromoteParams,
	) (*User, bool, error)
	UpsertAdmin(
		ctx context.Context,
		email string,
		name *string,
		passwordHash string,
	) (*User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, email, name, password_hash, is_admin, home_currency,
	stripe_customer_id, subscription_id, subscription_price_id,
	subscription_status, subscription_current_period_end,
	created_utc, updated_utc`

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	var u User
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	var u User
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (r *repository) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	update ProfileUpdate,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET name = CASE WHEN $2::boolean THEN $3::text ELSE name END,
		    home_currency = CASE WHEN $4::boolean THEN $5::text ELSE home_currency END,
		    updated_utc = now()
		WHERE id = $1
		RETURNING %s`, userColumns)

	var u User
	err := r.db.GetContext(
		ctx, &u, query, id,
		update.SetName, update.Name,
		update.SetCurrency, update.HomeCurrency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &u, nil
}

// SetStripeCustomerID stores the processor customer id; nil clears it.
func (r *repository) SetStripeCustomerID(
	ctx context.Context,
	id uuid.UUID,
	customerID *string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET stripe_customer_id = $2, updated_utc = now()
		WHERE id = $1
		RETURNING %s`, userColumns)

	var u User
	if err := r.db.GetContext(ctx, &u, query, id, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("set stripe customer id: %w", err)
	}
	return &u, nil
}

func (r *repository) UpdateSubscriptionFields(
	ctx context.Context,
	id uuid.UUID,
	fields SubscriptionFields,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET subscription_id = $2,
		    subscription_price_id = $3,
		    subscription_status = $4,
		    subscription_current_period_end = $5,
		    updated_utc = now()
		WHERE id = $1
		RETURNING %s`, userColumns)

	var u User
	err := r.db.GetContext(
		ctx, &u, query, id,
		fields.SubscriptionID,
		fields.SubscriptionPriceID,
		fields.SubscriptionStatus,
		fields.SubscriptionCurrentPeriodEnd,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("update subscription fields: %w", err)
	}
	return &u, nil
}

type promotedRow struct {
	User
	Created bool `db:"created"`
}

// PromoteFromSignup creates the account from the staged signup data or, when
// an account already exists for the email, overlays the billing fields onto
// it. The single upsert keeps concurrent activations from forking accounts.
// The second return value reports whether a new row was inserted.
func (r *repository) PromoteFromSignup(
	ctx context.Context,
	params PromoteParams,
) (*User, bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (
			email, name, password_hash,
			stripe_customer_id, subscription_id, subscription_price_id,
			subscription_status, subscription_current_period_end
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			subscription_id = EXCLUDED.subscription_id,
			subscription_price_id = EXCLUDED.subscription_price_id,
			subscription_status = EXCLUDED.subscription_status,
			subscription_current_period_end = EXCLUDED.subscription_current_period_end,
			updated_utc = now()
		RETURNING %s, (xmax = 0) AS created`, userColumns)

	var row promotedRow
	err := r.db.GetContext(
		ctx, &row, query,
		params.Email,
		params.Name,
		params.PasswordHash,
		params.StripeCustomerID,
		params.SubscriptionID,
		params.SubscriptionPriceID,
		params.SubscriptionStatus,
		params.SubscriptionCurrentPeriodEnd,
	)
	if err != nil {
		return nil, false, fmt.Errorf("promote signup: %w", err)
	}
	return &row.User, row.Created, nil
}

func (r *repository) UpsertAdmin(
	ctx context.Context,
	email string,
	name *string,
	passwordHash string,
) (*User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (email, name, password_hash, is_admin)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			is_admin = TRUE,
			updated_utc = now()
		RETURNING %s`, userColumns)

	var u User
	if err := r.db.GetContext(ctx, &u, query, email, name, passwordHash); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, core.ErrDuplicateKey
		}
		return nil, fmt.Errorf("upsert admin: %w", err)
	}
	return &u, nil
}

func (r *repository) CountUsers(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM users`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
