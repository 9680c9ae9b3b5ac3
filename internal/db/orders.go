package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/institute-portal/internal/payment"
)

// InsertOrder stores a newly created order
func (db *DB) InsertOrder(ctx context.Context, o payment.Order) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO payment_orders
		   (id, user_id, course_id, amount, currency, receipt, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.UserID, nullIfEmpty(o.CourseID), o.Amount, o.Currency, o.Receipt,
		string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// GetOrder retrieves an order by its gateway id. Returns nil if not found.
func (db *DB) GetOrder(ctx context.Context, id string) (*payment.Order, error) {
	var o payment.Order
	var status string
	var courseID, paymentID, failCode, failText *string
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, course_id, amount, currency, receipt, status,
		        payment_id, failure_code, failure_reason, created_at, updated_at
		 FROM payment_orders WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.UserID, &courseID, &o.Amount, &o.Currency, &o.Receipt, &status,
		&paymentID, &failCode, &failText, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	o.Status = payment.Status(status)
	o.CourseID = valueOrEmpty(courseID)
	o.PaymentID = valueOrEmpty(paymentID)
	o.FailureCode = valueOrEmpty(failCode)
	o.FailureReason = valueOrEmpty(failText)
	return &o, nil
}

// UpdateOrder writes the order's status and outcome fields
func (db *DB) UpdateOrder(ctx context.Context, o payment.Order) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE payment_orders
		 SET status = $2, payment_id = $3, failure_code = $4, failure_reason = $5, updated_at = $6
		 WHERE id = $1`,
		o.ID, string(o.Status), nullIfEmpty(o.PaymentID), nullIfEmpty(o.FailureCode),
		nullIfEmpty(o.FailureReason), o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &payment.NotFoundError{OrderID: o.ID}
	}
	return nil
}
