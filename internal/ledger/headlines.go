package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecordHeadline appends a published-headline record. No uniqueness is
// enforced here: several headlines may reference the same activity, and
// activity dedup is the participation log's job. When rec.Status is unset the
// record is stored as published with the publish time set to now.
func (l *Ledger) RecordHeadline(ctx context.Context, rec *HeadlineRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	if rec.Status == "" {
		rec.Status = HeadlinePublished
	}
	if rec.Status == HeadlinePublished && !rec.PublishedAt.Valid {
		rec.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}

	res, err := l.db.ExecContext(ctx, `
		INSERT INTO headlines (activity_id, activity_title, content, hashtags, images, status, created_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ActivityID, rec.ActivityTitle, rec.Content, rec.Hashtags, rec.Images,
		rec.Status, rec.CreatedAt, rec.PublishedAt)
	if err != nil {
		return fmt.Errorf("record headline: %w", err)
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

// Headlines returns recorded headlines, most recent first. A limit <= 0
// means unbounded.
func (l *Ledger) Headlines(ctx context.Context, limit int) ([]HeadlineRecord, error) {
	query := `SELECT * FROM headlines ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var records []HeadlineRecord
	if err := l.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list headlines: %w", err)
	}
	return records, nil
}

// CountHeadlines returns the total number of recorded headlines.
func (l *Ledger) CountHeadlines(ctx context.Context) (int, error) {
	var count int
	if err := l.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM headlines`); err != nil {
		return 0, fmt.Errorf("count headlines: %w", err)
	}
	return count, nil
}
