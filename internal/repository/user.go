package repository

import (
	"context"
	"fmt"

	"github.com/keydesk/keydesk/internal/model"
)

// CreateUserWithKey inserts a user and its first API key in one transaction.
// On success user.ID, user.CreatedAt, key.ID, key.UserID and key.CreatedAt
// are filled in. On any failure neither row is persisted.
func (r *Repository) CreateUserWithKey(ctx context.Context, user *model.User, key *model.APIKey) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	userQuery := `
		INSERT INTO users (first_name, last_name, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, userQuery, user.FirstName, user.LastName, user.Email).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	key.UserID = user.ID

	keyQuery := `
		INSERT INTO api_keys (key_value, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, keyQuery, key.KeyValue, key.UserID, key.ExpiresAt).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrKeyCollision
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user with key: %w", err)
	}

	return nil
}

// ListUserRows returns every user joined with its keys, newest user first.
// Users without a key appear once with a nil APIKey and ExpiresAt.
// Status is left empty; callers derive it from ExpiresAt.
func (r *Repository) ListUserRows(ctx context.Context) ([]model.UserRow, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, k.key_value, k.expires_at
		FROM users u
		LEFT JOIN api_keys k ON k.user_id = u.id
		ORDER BY u.id DESC, k.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	result := make([]model.UserRow, 0)
	for rows.Next() {
		var row model.UserRow
		if err := rows.Scan(
			&row.UserID,
			&row.FirstName,
			&row.LastName,
			&row.Email,
			&row.APIKey,
			&row.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return result, nil
}

// DeleteUser removes a user. Its API keys are removed by ON DELETE CASCADE.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
