package repository

import (
	"context"
	"time"

	"github.com/HenryPajuri/interparents2-sub000/internal/model"
)

const accountColumns = `id, email, password_hash, name, role, school, position, is_active, last_login_at, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Name,
		&account.Role,
		&account.School,
		&account.Position,
		&account.IsActive,
		&account.LastLoginAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1
	`, email)
	return scanAccount(row)
}

func (s *Store) GetAccountByID(ctx context.Context, accountID string) (model.Account, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, accountID)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context, limit int) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]model.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *Store) CreateAccount(ctx context.Context, account model.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, name, role, school, position, is_active, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, account.ID, account.Email, account.PasswordHash, account.Name, account.Role, account.School, account.Position, account.IsActive, account.LastLoginAt, account.CreatedAt, account.UpdatedAt)
	return err
}

type AccountUpdate struct {
	Email        *string
	Name         *string
	School       *string
	Position     *string
	Role         *string
	PasswordHash *string
}

func (s *Store) UpdateAccount(ctx context.Context, accountID string, update AccountUpdate) (model.Account, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE accounts
		SET email = COALESCE($2, email),
		    name = COALESCE($3, name),
		    school = COALESCE($4, school),
		    position = COALESCE($5, position),
		    role = COALESCE($6, role),
		    password_hash = COALESCE($7, password_hash),
		    updated_at = $8
		WHERE id = $1
		RETURNING `+accountColumns+`
	`, accountID, update.Email, update.Name, update.School, update.Position, update.Role, update.PasswordHash, time.Now().UTC())
	return scanAccount(row)
}

func (s *Store) UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE accounts
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, accountID, passwordHash, time.Now().UTC())
	return err
}

// DeactivateAccount soft-deletes. Events and communications keep their
// creator reference so history survives.
func (s *Store) DeactivateAccount(ctx context.Context, accountID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts
		SET is_active = false, updated_at = $2
		WHERE id = $1 AND is_active = true
	`, accountID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, accountID string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE accounts
		SET last_login_at = $2
		WHERE id = $1
	`, accountID, at)
	return err
}
