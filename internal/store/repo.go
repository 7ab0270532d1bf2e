package store

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned when a unique key already exists.
var ErrDuplicate = errors.New("store: duplicate")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SessionRecord is the persisted copy of the signed-in identity. It never
// contains credentials, only the opaque token the backend issued.
type SessionRecord struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	Token     string
	CreatedAt time.Time
}

// SessionRepo persists at most one session.
type SessionRepo interface {
	// Load returns the persisted session, or nil if there is none.
	Load(ctx context.Context) (*SessionRecord, error)

	// Save replaces the persisted session.
	Save(ctx context.Context, rec SessionRecord) error

	// Clear removes the persisted session. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}

// SettingsRepo is a small key/value store for client preferences.
type SettingsRepo interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put inserts or replaces the value for key.
	Put(ctx context.Context, key, value string) error
}

// AssessmentResult records one completed assessment.
type AssessmentResult struct {
	ID        int64
	Sequence  int64
	UserID    string
	PathID    string
	ModuleID  string
	LessonID  string
	Title     string
	Correct   int
	Total     int
	Timestamp time.Time
}

// ResultSummary aggregates a user's assessment results.
type ResultSummary struct {
	Attempts int
	Correct  int
	Total    int
	Lessons  int // distinct lessons assessed
}

// Accuracy returns Correct/Total, or 0 when nothing was answered.
func (s ResultSummary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// ResultRepo stores assessment results.
type ResultRepo interface {
	Append(ctx context.Context, r AssessmentResult) error
	// Recent returns results newest first.
	Recent(ctx context.Context, userID string, opts QueryOpts) ([]AssessmentResult, error)
	Summary(ctx context.Context, userID string) (ResultSummary, error)
}

// StudentSummary is one user's results as a teacher sees them.
type StudentSummary struct {
	UserID string
	ResultSummary
	LastAt time.Time
}

// ProgressRepo answers class-wide questions about assessment results.
type ProgressRepo interface {
	// ByUser summarizes every user with at least one result, keyed by
	// user id.
	ByUser(ctx context.Context) (map[string]StudentSummary, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// User is a backend account. Only the bcrypt hash of the password is kept.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepo manages backend accounts.
type UserRepo interface {
	// Create inserts u. Returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, u User) error
	// ByEmail returns the user, or nil if none matches (case-insensitive).
	ByEmail(ctx context.Context, email string) (*User, error)
	// ByID returns the user, or nil if none matches.
	ByID(ctx context.Context, id string) (*User, error)
	// CountByRole returns the number of accounts per role.
	CountByRole(ctx context.Context) (map[string]int, error)
	// ListByRole returns the accounts with role ordered by name.
	ListByRole(ctx context.Context, role string) ([]User, error)
}

// TokenRepo maps opaque access tokens to users.
type TokenRepo interface {
	Insert(ctx context.Context, token, userID string) error
	// Resolve returns the token's user, or nil for unknown tokens.
	Resolve(ctx context.Context, token string) (*User, error)
	Revoke(ctx context.Context, token string) error
}

// Path is a learning path.
type Path struct {
	ID          string
	Title       string
	Description string
	Level       string
	Position    int
}

// Module belongs to a path; Position is its order within the path.
type Module struct {
	ID          string
	PathID      string
	Title       string
	Description string
	Position    int
}

// Lesson belongs to a module. Content is markdown.
type Lesson struct {
	ID       string
	ModuleID string
	Title    string
	Content  string
	Minutes  int
	Position int
}

// CatalogCounts summarizes the catalog size.
type CatalogCounts struct {
	Paths   int
	Modules int
	Lessons int
}

// CatalogRepo stores the learning catalog served by the backend.
type CatalogRepo interface {
	UpsertPath(ctx context.Context, p Path) error
	UpsertModule(ctx context.Context, m Module) error
	UpsertLesson(ctx context.Context, l Lesson) error

	Paths(ctx context.Context) ([]Path, error)
	// ModulesByPath returns modules ordered by Position.
	ModulesByPath(ctx context.Context, pathID string) ([]Module, error)
	Module(ctx context.Context, id string) (*Module, error)
	// LessonsByModule returns lessons ordered by Position.
	LessonsByModule(ctx context.Context, moduleID string) ([]Lesson, error)
	Lesson(ctx context.Context, id string) (*Lesson, error)
	Counts(ctx context.Context) (CatalogCounts, error)
}
