package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `
id, email, hashed_password, full_name, is_active, is_superuser,
company, job_title, phone, avatar_url, preferences,
api_key, api_key_expires_at, last_login_at, created_at, updated_at`

// Create inserts a new user, assigning an ID and timestamps when absent.
func (r *PGRepo) Create(ctx context.Context, user User) (User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	prefs, err := marshalJSONMap(user.Preferences)
	if err != nil {
		return User{}, err
	}

	const query = `
INSERT INTO users (
    id, email, hashed_password, full_name, is_active, is_superuser,
    company, job_title, phone, avatar_url, preferences,
    api_key, api_key_expires_at, last_login_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		nullableString(user.FullName),
		user.IsActive,
		user.IsSuperuser,
		nullableString(user.Company),
		nullableString(user.JobTitle),
		nullableString(user.Phone),
		nullableString(user.AvatarURL),
		prefs,
		nullableString(user.APIKey),
		nullableTime(user.APIKeyExpiresAt),
		nullableTime(user.LastLoginAt),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// GetByID returns a user by primary key.
func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.getBy(ctx, "id = $1", userID)
}

// GetByEmail returns a user by unique email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getBy(ctx, "email = $1", email)
}

// GetByAPIKey returns a user by unique API key.
func (r *PGRepo) GetByAPIKey(ctx context.Context, apiKey string) (User, error) {
	return r.getBy(ctx, "api_key = $1", apiKey)
}

// Update writes the full row back.
func (r *PGRepo) Update(ctx context.Context, user User) error {
	prefs, err := marshalJSONMap(user.Preferences)
	if err != nil {
		return err
	}

	const query = `
UPDATE users SET
  email = $2,
  hashed_password = $3,
  full_name = $4,
  is_active = $5,
  is_superuser = $6,
  company = $7,
  job_title = $8,
  phone = $9,
  avatar_url = $10,
  preferences = $11,
  api_key = $12,
  api_key_expires_at = $13,
  last_login_at = $14,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		nullableString(user.FullName),
		user.IsActive,
		user.IsSuperuser,
		nullableString(user.Company),
		nullableString(user.JobTitle),
		nullableString(user.Phone),
		nullableString(user.AvatarURL),
		prefs,
		nullableString(user.APIKey),
		nullableTime(user.APIKeyExpiresAt),
		nullableTime(user.LastLoginAt),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// TouchLastLogin stamps last_login_at with the server clock.
func (r *PGRepo) TouchLastLogin(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET last_login_at = now(), updated_at = now() WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes the user. Owned documents and their analyses go with it via
// the declared FK cascade; clauses under those documents do not (see the
// schema migration).
func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) getBy(ctx context.Context, where string, arg any) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1`

	var user User
	var fullName, company, jobTitle, phone, avatarURL, apiKey sql.NullString
	var prefs []byte
	var apiKeyExpiresAt, lastLoginAt sql.NullTime

	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&fullName,
		&user.IsActive,
		&user.IsSuperuser,
		&company,
		&jobTitle,
		&phone,
		&avatarURL,
		&prefs,
		&apiKey,
		&apiKeyExpiresAt,
		&lastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	user.FullName = fullName.String
	user.Company = company.String
	user.JobTitle = jobTitle.String
	user.Phone = phone.String
	user.AvatarURL = avatarURL.String
	user.APIKey = apiKey.String
	if apiKeyExpiresAt.Valid {
		t := apiKeyExpiresAt.Time
		user.APIKeyExpiresAt = &t
	}
	if lastLoginAt.Valid {
		t := lastLoginAt.Time
		user.LastLoginAt = &t
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &user.Preferences); err != nil {
			return User{}, err
		}
	}
	return user, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalJSONMap(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
