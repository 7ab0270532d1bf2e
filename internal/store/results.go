package store

import (
	"context"
	"database/sql"
	"fmt"
)

type resultRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *resultRepo) Append(ctx context.Context, res AssessmentResult) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO assessment_results
		(sequence, user_id, path_id, module_id, lesson_id, title, correct, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, res.UserID, res.PathID, res.ModuleID, res.LessonID, res.Title,
		res.Correct, res.Total, toMillis(res.Timestamp))
	if err != nil {
		return fmt.Errorf("save assessment result: %w", err)
	}
	return nil
}

func (r *resultRepo) Recent(ctx context.Context, userID string, opts QueryOpts) ([]AssessmentResult, error) {
	where, args := whereOpts(opts, "created_at", []string{"user_id = ?"}, []any{userID})
	rows, err := r.db.QueryContext(ctx, `SELECT id, sequence, user_id, path_id, module_id,
		lesson_id, title, correct, total, created_at FROM assessment_results`+where+
		` ORDER BY sequence DESC`+limitClause(opts), args...)
	if err != nil {
		return nil, fmt.Errorf("query assessment results: %w", err)
	}
	defer rows.Close()

	var out []AssessmentResult
	for rows.Next() {
		var res AssessmentResult
		var created int64
		if err := rows.Scan(&res.ID, &res.Sequence, &res.UserID, &res.PathID, &res.ModuleID,
			&res.LessonID, &res.Title, &res.Correct, &res.Total, &created); err != nil {
			return nil, fmt.Errorf("scan assessment result: %w", err)
		}
		res.Timestamp = fromMillis(created)
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *resultRepo) Summary(ctx context.Context, userID string) (ResultSummary, error) {
	var s ResultSummary
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(correct), 0),
		COALESCE(SUM(total), 0), COUNT(DISTINCT lesson_id)
		FROM assessment_results WHERE user_id = ?`, userID,
	).Scan(&s.Attempts, &s.Correct, &s.Total, &s.Lessons)
	if err != nil {
		return ResultSummary{}, fmt.Errorf("summarize assessment results: %w", err)
	}
	return s, nil
}

func (r *resultRepo) ByUser(ctx context.Context) (map[string]StudentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, COUNT(*), COALESCE(SUM(correct), 0),
		COALESCE(SUM(total), 0), COUNT(DISTINCT lesson_id), MAX(created_at)
		FROM assessment_results WHERE user_id != '' GROUP BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("summarize results by user: %w", err)
	}
	defer rows.Close()

	out := make(map[string]StudentSummary)
	for rows.Next() {
		var s StudentSummary
		var last int64
		if err := rows.Scan(&s.UserID, &s.Attempts, &s.Correct, &s.Total, &s.Lessons, &last); err != nil {
			return nil, fmt.Errorf("scan result summary: %w", err)
		}
		s.LastAt = fromMillis(last)
		out[s.UserID] = s
	}
	return out, rows.Err()
}
