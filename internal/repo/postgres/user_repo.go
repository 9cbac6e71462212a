package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

type UserRecord struct {
	ID    int64
	Name  string
	Email string
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) FindByID(ctx context.Context, userID int64) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	var record UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, name, email
FROM users
WHERE id = $1
LIMIT 1
`, userID).Scan(&record.ID, &record.Name, &record.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("find user by id: %w", err)
	}

	return record, nil
}
