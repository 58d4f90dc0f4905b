package repository

import (
	"context"

	"library-lending/internal/infra"
	"library-lending/internal/infra/db"
	"library-lending/internal/usecase/shared"
)

type BookCopyRepository struct{}

func NewBookCopyRepository() shared.BookCopyRepository {
	return &BookCopyRepository{}
}

// Reserve is a compare-and-swap: the WHERE clause only matches while the copy
// is still available, so of two concurrent checkouts exactly one sees a row.
func (r *BookCopyRepository) Reserve(ctx context.Context, dbtx db.DBTX, copyID int64) error {
	const query = `UPDATE book_copies SET available = FALSE WHERE id = $1 AND available`

	tag, err := dbtx.Exec(ctx, query, copyID)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve book copy", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows: either the copy is taken or it does not exist.
	var exists bool
	if err := dbtx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM book_copies WHERE id = $1)`, copyID).Scan(&exists); err != nil {
		return infra.WrapRepoErr("failed to check book copy existence", err)
	}
	if !exists {
		return infra.WrapRepoErr("book copy not found", nil, infra.KindNotFound)
	}
	return infra.WrapRepoErr("book copy is not available", nil, infra.KindConflict)
}

func (r *BookCopyRepository) Release(ctx context.Context, dbtx db.DBTX, copyID int64) error {
	const query = `UPDATE book_copies SET available = TRUE WHERE id = $1`

	tag, err := dbtx.Exec(ctx, query, copyID)
	if err != nil {
		return infra.WrapRepoErr("failed to release book copy", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("book copy not found", nil, infra.KindNotFound)
	}
	return nil
}
