package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/institute-portal/internal/admission"
)

// InsertApplication stores an admission application after its documents are uploaded
func (db *DB) InsertApplication(ctx context.Context, app admission.Application) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO admission_applications
		   (id, name, email, phone, college, bonafide_key, aadhaar_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		app.ID, app.Name, app.Email, app.Phone, app.College,
		app.BonafideKey, app.AadhaarKey, app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// GetApplication retrieves an application by ID. Returns nil if not found.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*admission.Application, error) {
	var app admission.Application
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, college, bonafide_key, aadhaar_key, created_at
		 FROM admission_applications WHERE id = $1`,
		id,
	).Scan(&app.ID, &app.Name, &app.Email, &app.Phone, &app.College,
		&app.BonafideKey, &app.AadhaarKey, &app.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &app, nil
}
