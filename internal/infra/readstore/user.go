package readstore

import (
	"context"

	"library-lending/internal/infra"
	"library-lending/internal/infra/db"
	"library-lending/internal/pkg/pgconv"
	"library-lending/internal/usecase/queries"

	"github.com/doug-martin/goqu/v9"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) queries.UserReadStore {
	return &UserReadStore{db: dbtx}
}

func (s *UserReadStore) FindByID(ctx context.Context, id int64) (*queries.AuthorizedUserView, error) {
	sql, args, err := goqu.Dialect(dialectPostgres).
		From("users").
		Select("id", "username", "email", "role", "is_active").
		Where(goqu.Ex{"id": id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build user query", err)
	}

	var view queries.AuthorizedUserView
	err = s.db.QueryRow(ctx, sql, args...).Scan(&view.ID, &view.Username, &view.Email, &view.Role, &view.IsActive)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by id", err)
	}
	return &view, nil
}

func (s *UserReadStore) FindByUsername(ctx context.Context, username string) (*queries.AuthorizedUserView, string, error) {
	sql, args, err := goqu.Dialect(dialectPostgres).
		From("users").
		Select("id", "username", "email", "role", "is_active", "password_hash").
		Where(goqu.Ex{"username": username}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, "", infra.WrapRepoErr("failed to build user query", err)
	}

	var (
		view queries.AuthorizedUserView
		hash string
	)
	err = s.db.QueryRow(ctx, sql, args...).Scan(&view.ID, &view.Username, &view.Email, &view.Role, &view.IsActive, &hash)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by username", err)
	}
	return &view, hash, nil
}
