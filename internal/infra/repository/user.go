package repository

import (
	"context"

	"library-lending/internal/domain/user"
	"library-lending/internal/infra"
	"library-lending/internal/infra/db"
	"library-lending/internal/usecase/shared"
)

type UserRepository struct{}

func NewUserRepository() shared.UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(ctx context.Context, dbtx db.DBTX, u *user.User) (int64, error) {
	const query = `
		INSERT INTO users (username, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := dbtx.QueryRow(ctx, query,
		u.Username().Value(),
		u.Email().Value(),
		u.PasswordHash(),
		u.Role().String(),
		u.IsActive(),
	).Scan(&id)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to create user", err)
	}
	return id, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, dbtx db.DBTX, userID int64) error {
	const query = `UPDATE users SET last_login = now() WHERE id = $1`

	tag, err := dbtx.Exec(ctx, query, userID)
	if err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return nil
}
