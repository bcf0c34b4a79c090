package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/venue-box-office/internal/discount"
	"github.com/iliyamo/venue-box-office/internal/model"
)

// DiscountRepo stores discount codes.  It implements discount.Store.
type DiscountRepo struct {
	db *sql.DB
}

// NewDiscountRepo returns a new DiscountRepo bound to the given database.
func NewDiscountRepo(db *sql.DB) *DiscountRepo { return &DiscountRepo{db: db} }

// Insert adds a code.  A clash on the primary key returns
// discount.ErrCodeExists so the generator can retry.
func (r *DiscountRepo) Insert(ctx context.Context, d model.Discount) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO Discount (code, percentage, reason) VALUES (?, ?, ?)`, d.Code, d.Percentage, d.Reason)
	if isDuplicate(err) {
		return discount.ErrCodeExists
	}
	return err
}

// GetByCode returns the discount with the exact code or
// discount.ErrNotFound.  The comparison is case sensitive even on
// tables created with a case-insensitive collation.
func (r *DiscountRepo) GetByCode(ctx context.Context, code string) (model.Discount, error) {
	var d model.Discount
	err := r.db.QueryRowContext(ctx, `SELECT code, percentage, reason FROM Discount WHERE BINARY code = ?`, code).
		Scan(&d.Code, &d.Percentage, &d.Reason)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Discount{}, discount.ErrNotFound
	}
	return d, err
}
