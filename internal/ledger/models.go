package ledger

import (
	"database/sql"
	"time"
)

// CommentRecord marks an article as having received an automated comment.
// At most one record exists per article id.
type CommentRecord struct {
	ID        int64     `db:"id"`
	ArticleID string    `db:"article_id"`
	Title     string    `db:"title"`
	URL       string    `db:"url"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// HeadlineStatus is the lifecycle state of a published headline.
type HeadlineStatus string

const (
	HeadlineDraft     HeadlineStatus = "draft"
	HeadlinePublished HeadlineStatus = "published"
)

// HeadlineRecord is one published micro-headline, optionally tied to an
// activity. The activity reference is denormalized; no existence check is
// performed against the participation log.
type HeadlineRecord struct {
	ID            int64          `db:"id"`
	ActivityID    string         `db:"activity_id"`
	ActivityTitle string         `db:"activity_title"`
	Content       string         `db:"content"`
	Hashtags      string         `db:"hashtags"`
	Images        string         `db:"images"` // JSON array of image paths, empty when none
	Status        HeadlineStatus `db:"status"`
	CreatedAt     time.Time      `db:"created_at"`
	PublishedAt   sql.NullTime   `db:"published_at"`
}

// OperationKind classifies how an activity is participated in.
type OperationKind string

const (
	OpGenerateContent OperationKind = "generate_content"
	OpLikeShare       OperationKind = "like_share"
	OpFillForm        OperationKind = "fill_form"
	OpOneClick        OperationKind = "one_click"
	OpOther           OperationKind = "other"
	OpNotImplemented  OperationKind = "not_implemented"
)

// Execution results recorded for participation attempts. Any other string is
// treated as an error description.
const (
	ResultSuccess = "success"
	ResultSkipped = "skipped"
)

// ParticipationRecord is one attempt (successful, skipped, or failed) to act
// on an activity. An activity accumulates one row per attempt; rows are never
// mutated.
type ParticipationRecord struct {
	ID            int64         `db:"id"`
	ActivityID    string        `db:"activity_id"`
	ActivityTitle string        `db:"activity_title"`
	Operation     OperationKind `db:"operation_kind"`
	Confidence    float64       `db:"confidence"`
	Analysis      string        `db:"analysis"` // serialized diagnostic payload, may be empty
	UserConfirmed bool          `db:"user_confirmed"`
	Result        string        `db:"execution_result"`
	CreatedAt     time.Time     `db:"created_at"`
}

// Participation is the input for RecordParticipation. Detail, when set, is
// serialized to JSON for the analysis column.
type Participation struct {
	ActivityID    string
	ActivityTitle string
	Operation     OperationKind
	Confidence    float64
	Detail        any
	UserConfirmed bool
	Result        string
}
