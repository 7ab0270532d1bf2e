package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type catalogRepo struct {
	db *sql.DB
}

func (r *catalogRepo) UpsertPath(ctx context.Context, p Path) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO paths (id, title, description, level, position)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, description = excluded.description,
			level = excluded.level, position = excluded.position`,
		p.ID, p.Title, p.Description, p.Level, p.Position)
	if err != nil {
		return fmt.Errorf("upsert path %s: %w", p.ID, err)
	}
	return nil
}

func (r *catalogRepo) UpsertModule(ctx context.Context, m Module) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO modules (id, path_id, title, description, position)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET path_id = excluded.path_id, title = excluded.title,
			description = excluded.description, position = excluded.position`,
		m.ID, m.PathID, m.Title, m.Description, m.Position)
	if err != nil {
		return fmt.Errorf("upsert module %s: %w", m.ID, err)
	}
	return nil
}

func (r *catalogRepo) UpsertLesson(ctx context.Context, l Lesson) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO lessons (id, module_id, title, content, minutes, position)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET module_id = excluded.module_id, title = excluded.title,
			content = excluded.content, minutes = excluded.minutes, position = excluded.position`,
		l.ID, l.ModuleID, l.Title, l.Content, l.Minutes, l.Position)
	if err != nil {
		return fmt.Errorf("upsert lesson %s: %w", l.ID, err)
	}
	return nil
}

func (r *catalogRepo) Paths(ctx context.Context) ([]Path, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, level, position FROM paths ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query paths: %w", err)
	}
	defer rows.Close()

	var out []Path
	for rows.Next() {
		var p Path
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Level, &p.Position); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *catalogRepo) ModulesByPath(ctx context.Context, pathID string) ([]Module, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, path_id, title, description, position
		FROM modules WHERE path_id = ? ORDER BY position, id`, pathID)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	defer rows.Close()

	var out []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.PathID, &m.Title, &m.Description, &m.Position); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *catalogRepo) Module(ctx context.Context, id string) (*Module, error) {
	var m Module
	err := r.db.QueryRowContext(ctx, `SELECT id, path_id, title, description, position
		FROM modules WHERE id = ?`, id).Scan(&m.ID, &m.PathID, &m.Title, &m.Description, &m.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query module %s: %w", id, err)
	}
	return &m, nil
}

func (r *catalogRepo) LessonsByModule(ctx context.Context, moduleID string) ([]Lesson, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, module_id, title, content, minutes, position
		FROM lessons WHERE module_id = ? ORDER BY position, id`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	var out []Lesson
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.Minutes, &l.Position); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *catalogRepo) Lesson(ctx context.Context, id string) (*Lesson, error) {
	var l Lesson
	err := r.db.QueryRowContext(ctx, `SELECT id, module_id, title, content, minutes, position
		FROM lessons WHERE id = ?`, id).Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.Minutes, &l.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query lesson %s: %w", id, err)
	}
	return &l, nil
}

func (r *catalogRepo) Counts(ctx context.Context) (CatalogCounts, error) {
	var c CatalogCounts
	err := r.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM paths), (SELECT COUNT(*) FROM modules), (SELECT COUNT(*) FROM lessons)`,
	).Scan(&c.Paths, &c.Modules, &c.Lessons)
	if err != nil {
		return CatalogCounts{}, fmt.Errorf("count catalog: %w", err)
	}
	return c, nil
}
