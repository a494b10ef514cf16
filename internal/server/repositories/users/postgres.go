package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finsight-app/finsight/internal/common"
	"github.com/finsight-app/finsight/internal/dbx"
	"github.com/finsight-app/finsight/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {

	query :=
		`INSERT INTO users (username, password_hash, role, full_name, client_id, created_at, last_login)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (username) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Role, user.FullName,
		user.ClientID, user.CreatedAt, user.LastLogin)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows == 0 {
		return common.ErrorAlreadyExists
	}

	return nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT username, password_hash, role, full_name, client_id, created_at, last_login
		 FROM users
		 WHERE username = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username, &user.PasswordHash, &user.Role, &user.FullName,
		&user.ClientID, &user.CreatedAt, &user.LastLogin)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users
		 SET password_hash = $2, role = $3, full_name = $4, client_id = $5, last_login = $6
		 WHERE username = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Role, user.FullName,
		user.ClientID, user.LastLogin)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows == 0 {
		return common.ErrorNotFound
	}

	return nil
}
