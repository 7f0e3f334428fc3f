package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// IsProcessed reports whether any participation attempt — successful,
// skipped, or failed — has been recorded for activityID. This is the
// predicate that prevents re-analysis of an activity across runs.
func (l *Ledger) IsProcessed(ctx context.Context, activityID string) (bool, error) {
	var exists bool
	err := l.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM activity_participations WHERE activity_id = ?)`,
		activityID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check processed %s: %w", activityID, err)
	}
	return exists, nil
}

// HasParticipated reports whether a user-confirmed participation attempt has
// been recorded for activityID. Stricter than IsProcessed: a skipped or
// unconfirmed attempt does not count. Both predicates are part of the API;
// callers intentionally differ in which they use.
func (l *Ledger) HasParticipated(ctx context.Context, activityID string) (bool, error) {
	var exists bool
	err := l.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM activity_participations WHERE activity_id = ? AND user_confirmed = 1)`,
		activityID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check participated %s: %w", activityID, err)
	}
	return exists, nil
}

// RecordParticipation appends one attempt row. Every call inserts a new row;
// the full attempt history per activity is retained, e.g. an automatic skip
// followed by a manual retry that succeeds. A detail payload that cannot be
// serialized is dropped rather than failing the insert — the attempt record
// matters more than its diagnostics.
func (l *Ledger) RecordParticipation(ctx context.Context, p Participation) error {
	var analysis string
	if p.Detail != nil {
		if data, err := json.Marshal(p.Detail); err == nil {
			analysis = string(data)
		}
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO activity_participations
		(activity_id, activity_title, operation_kind, confidence, analysis, user_confirmed, execution_result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ActivityID, p.ActivityTitle, p.Operation, p.Confidence, analysis,
		p.UserConfirmed, p.Result, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record participation %s: %w", p.ActivityID, err)
	}
	return nil
}

// ParticipationStats summarizes the attempt history.
type ParticipationStats struct {
	Attempts     int // rows in total
	Activities   int // distinct activities touched
	Participated int // distinct activities with a user-confirmed attempt
}

// CountParticipations returns aggregate attempt counts.
func (l *Ledger) CountParticipations(ctx context.Context) (ParticipationStats, error) {
	var s ParticipationStats
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT activity_id),
		       COUNT(DISTINCT CASE WHEN user_confirmed = 1 THEN activity_id END)
		FROM activity_participations
	`).Scan(&s.Attempts, &s.Activities, &s.Participated)
	if err != nil {
		return ParticipationStats{}, fmt.Errorf("count participations: %w", err)
	}
	return s, nil
}

// Participations returns recorded attempts, most recent first. A limit <= 0
// means unbounded.
func (l *Ledger) Participations(ctx context.Context, limit int) ([]ParticipationRecord, error) {
	query := `SELECT * FROM activity_participations ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var records []ParticipationRecord
	if err := l.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	return records, nil
}
