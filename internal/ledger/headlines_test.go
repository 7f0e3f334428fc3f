package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordHeadlineDefaultsToPublished(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()

	rec := &HeadlineRecord{
		ActivityID:    "act-1",
		ActivityTitle: "春日随手拍",
		Content:       "今天的天空真好看 #春日随手拍#",
		Hashtags:      "#春日随手拍#",
	}
	require.NoError(t, l.RecordHeadline(ctx, rec))
	require.NotZero(t, rec.ID)

	records, err := l.Headlines(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, HeadlinePublished, records[0].Status)
	require.True(t, records[0].PublishedAt.Valid)
}

func TestRecordHeadlineDraftStatusKept(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()

	rec := &HeadlineRecord{Content: "unfinished", Status: HeadlineDraft}
	require.NoError(t, l.RecordHeadline(ctx, rec))

	records, err := l.Headlines(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, HeadlineDraft, records[0].Status)
	require.False(t, records[0].PublishedAt.Valid)
}

func TestHeadlinesNoUniquenessPerActivity(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()

	// Several headlines may reference the same activity; dedup is the
	// participation log's responsibility.
	for i := 0; i < 3; i++ {
		require.NoError(t, l.RecordHeadline(ctx, &HeadlineRecord{
			ActivityID: "act-7",
			Content:    fmt.Sprintf("take %d", i),
		}))
	}

	count, err := l.CountHeadlines(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestHeadlinesOrderingAndLimit(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, l.RecordHeadline(ctx, &HeadlineRecord{
			Content: fmt.Sprintf("headline %d", i),
		}))
	}

	records, err := l.Headlines(ctx, 5)
	require.NoError(t, err)
	require.Len(t, records, 5)
	require.Equal(t, "headline 6", records[0].Content)

	all, err := l.Headlines(ctx, 0)
	require.NoError(t, err)

	count, err := l.CountHeadlines(ctx)
	require.NoError(t, err)
	require.Equal(t, len(all), count)
}
