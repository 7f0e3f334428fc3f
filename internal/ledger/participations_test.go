package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessedVersusParticipated(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()

	require.NoError(t, l.RecordParticipation(ctx, Participation{
		ActivityID: "act-1",
		Operation:  OpNotImplemented,
		Result:     ResultSkipped,
	}))

	processed, err := l.IsProcessed(ctx, "act-1")
	require.NoError(t, err)
	require.True(t, processed)

	// A skip without confirmation does not count as participation.
	participated, err := l.HasParticipated(ctx, "act-1")
	require.NoError(t, err)
	require.False(t, participated)

	require.NoError(t, l.RecordParticipation(ctx, Participation{
		ActivityID:    "act-1",
		Operation:     OpGenerateContent,
		UserConfirmed: true,
		Result:        ResultSuccess,
	}))

	participated, err = l.HasParticipated(ctx, "act-1")
	require.NoError(t, err)
	require.True(t, participated)

	records, err := l.Participations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestParticipationAttemptHistory(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()

	attempts := []Participation{
		{ActivityID: "c1", Operation: OpNotImplemented, Result: ResultSkipped},
		{ActivityID: "c1", Operation: OpGenerateContent, UserConfirmed: true, Result: "publish form not found"},
		{ActivityID: "c1", Operation: OpGenerateContent, UserConfirmed: true, Result: ResultSuccess},
	}

	for i, p := range attempts {
		require.NoError(t, l.RecordParticipation(ctx, p))

		processed, err := l.IsProcessed(ctx, "c1")
		require.NoError(t, err)
		require.True(t, processed, "processed after attempt %d", i+1)
	}

	records, err := l.Participations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Newest attempt first.
	require.Equal(t, ResultSuccess, records[0].Result)
}

func TestIsProcessedUnknownID(t *testing.T) {
	l := openTest(t)

	processed, err := l.IsProcessed(context.Background(), "never-seen")
	require.NoError(t, err)
	require.False(t, processed)

	participated, err := l.HasParticipated(context.Background(), "never-seen")
	require.NoError(t, err)
	require.False(t, participated)
}

func TestCountParticipations(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()

	stats, err := l.CountParticipations(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Attempts)

	attempts := []Participation{
		{ActivityID: "x1", Operation: OpNotImplemented, Result: ResultSkipped},
		{ActivityID: "x1", Operation: OpGenerateContent, UserConfirmed: true, Result: ResultSuccess},
		{ActivityID: "x2", Operation: OpNotImplemented, Result: ResultSkipped},
	}
	for _, p := range attempts {
		require.NoError(t, l.RecordParticipation(ctx, p))
	}

	stats, err = l.CountParticipations(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Attempts)
	require.Equal(t, 2, stats.Activities)
	require.Equal(t, 1, stats.Participated)
}

func TestParticipationDetailSerialization(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()

	detail := map[string]any{
		"operation_kind": "one_click",
		"elements":       map[string]bool{"join_button": true},
	}
	require.NoError(t, l.RecordParticipation(ctx, Participation{
		ActivityID: "act-2",
		Operation:  OpOneClick,
		Confidence: 0.8,
		Detail:     detail,
		Result:     ResultSuccess,
	}))

	records, err := l.Participations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Contains(t, records[0].Analysis, "one_click")
	require.InDelta(t, 0.8, records[0].Confidence, 1e-9)
}

func TestParticipationUnserializableDetail(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()

	// A channel cannot be JSON-encoded; the row is still inserted with the
	// detail dropped.
	require.NoError(t, l.RecordParticipation(ctx, Participation{
		ActivityID: "act-3",
		Operation:  OpOther,
		Detail:     map[string]any{"ch": make(chan int)},
		Result:     ResultSkipped,
	}))

	records, err := l.Participations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Empty(t, records[0].Analysis)
}
