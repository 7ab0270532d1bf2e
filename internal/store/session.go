package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Load(ctx context.Context) (*SessionRecord, error) {
	var rec SessionRecord
	var created int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, email, name, role, token, created_at FROM client_session WHERE id = 1`,
	).Scan(&rec.UserID, &rec.Email, &rec.Name, &rec.Role, &rec.Token, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	rec.CreatedAt = fromMillis(created)
	return &rec, nil
}

func (r *sessionRepo) Save(ctx context.Context, rec SessionRecord) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO client_session
		(id, user_id, email, name, role, token, created_at) VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id, email = excluded.email, name = excluded.name,
			role = excluded.role, token = excluded.token, created_at = excluded.created_at`,
		rec.UserID, rec.Email, rec.Name, rec.Role, rec.Token, toMillis(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM client_session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
