package db

import (
	"context"
	"fmt"

	"github.com/jonathan/institute-portal/internal/leads"
)

// InsertLead stores a captured lead. Re-delivering the same lead is a no-op.
func (db *DB) InsertLead(ctx context.Context, lead leads.Lead) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO leads (id, session_id, name, phone, query, captured_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		lead.ID, lead.SessionID, lead.Name, lead.Phone, lead.Query, lead.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// RecentLeads returns the newest leads first.
func (db *DB) RecentLeads(ctx context.Context, limit int) ([]leads.Lead, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, name, phone, query, captured_at
		 FROM leads ORDER BY captured_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var out []leads.Lead
	for rows.Next() {
		var l leads.Lead
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Name, &l.Phone, &l.Query, &l.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
