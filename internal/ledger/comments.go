package ledger

import (
	"context"
	"fmt"
	"time"
)

// HasCommented reports whether a comment has been recorded for articleID.
func (l *Ledger) HasCommented(ctx context.Context, articleID string) (bool, error) {
	var exists bool
	err := l.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM comments WHERE article_id = ?)`, articleID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check comment %s: %w", articleID, err)
	}
	return exists, nil
}

// RecordComment records that articleID has received a comment. Recording the
// same article twice is a no-op, not an error: the conflict clause discards
// the later insert, so the first recorded row (including its title, url and
// content) wins. The insert-or-ignore is a single atomic statement; the
// unique constraint, not application logic, resolves concurrent inserts.
func (l *Ledger) RecordComment(ctx context.Context, articleID, title, url, content string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO comments (article_id, title, url, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(article_id) DO NOTHING
	`, articleID, title, url, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record comment %s: %w", articleID, err)
	}
	return nil
}

// Comments returns recorded comments, most recent first. A limit <= 0 means
// unbounded.
func (l *Ledger) Comments(ctx context.Context, limit int) ([]CommentRecord, error) {
	query := `SELECT * FROM comments ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var records []CommentRecord
	if err := l.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return records, nil
}

// CountComments returns the total number of recorded comments.
func (l *Ledger) CountComments(ctx context.Context) (int, error) {
	var count int
	if err := l.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM comments`); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}
