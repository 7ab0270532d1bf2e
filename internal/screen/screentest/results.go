package screentest

import (
	"context"
	"sync"

	"github.com/abhisek/learninghub/internal/store"
)

// Results is an in-memory store.ResultRepo.
type Results struct {
	// AppendErr, when set, fails every Append.
	AppendErr error

	mu   sync.Mutex
	rows []store.AssessmentResult
}

var _ store.ResultRepo = (*Results)(nil)

func (r *Results) Append(_ context.Context, res store.AssessmentResult) error {
	if r.AppendErr != nil {
		return r.AppendErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res.ID = int64(len(r.rows) + 1)
	res.Sequence = res.ID
	r.rows = append(r.rows, res)
	return nil
}

func (r *Results) Recent(_ context.Context, userID string, opts store.QueryOpts) ([]store.AssessmentResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []store.AssessmentResult
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID != userID {
			continue
		}
		out = append(out, r.rows[i])
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (r *Results) Summary(_ context.Context, userID string) (store.ResultSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s store.ResultSummary
	lessons := map[string]bool{}
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		s.Attempts++
		s.Correct += row.Correct
		s.Total += row.Total
		lessons[row.LessonID] = true
	}
	s.Lessons = len(lessons)
	return s, nil
}

// All returns every stored row in insertion order.
func (r *Results) All() []store.AssessmentResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]store.AssessmentResult(nil), r.rows...)
}
