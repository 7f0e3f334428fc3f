package agent

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yhzhou/ttagent/internal/activity"
	"github.com/yhzhou/ttagent/internal/client"
	"github.com/yhzhou/ttagent/internal/config"
	"github.com/yhzhou/ttagent/internal/generator"
	"github.com/yhzhou/ttagent/internal/ledger"
)

type fakeDriver struct {
	hot            []client.NewsItem
	postOutcome    client.Outcome
	postCalls      []string
	publishOutcome client.Outcome
	publishCalls   []string
}

func (d *fakeDriver) HotNews(ctx context.Context, limit int) ([]client.NewsItem, error) {
	return d.hot, nil
}

func (d *fakeDriver) Detail(ctx context.Context, articleID string) (*client.ArticleDetail, error) {
	return &client.ArticleDetail{
		ArticleID: articleID,
		Title:     "标题-" + articleID,
		Content:   "正文内容",
		URL:       "https://www.toutiao.com/article/" + articleID + "/",
	}, nil
}

func (d *fakeDriver) PostComment(ctx context.Context, articleID, content string) client.Outcome {
	d.postCalls = append(d.postCalls, articleID)
	return d.postOutcome
}

func (d *fakeDriver) PublishHeadline(ctx context.Context, content, topic string) client.Outcome {
	d.publishCalls = append(d.publishCalls, content)
	return d.publishOutcome
}

// fakeConfirmer replays a scripted sequence of operator answers.
type fakeConfirmer struct {
	answers []string
}

func (c *fakeConfirmer) next() string {
	if len(c.answers) == 0 {
		return ""
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a
}

func (c *fakeConfirmer) Confirm(prompt string) (bool, error) {
	return c.next() == "y", nil
}

func (c *fakeConfirmer) Line(prompt string) (string, error) {
	return c.next(), nil
}

type fakeSource struct {
	acts []activity.Activity
}

func (s *fakeSource) List(ctx context.Context, opts activity.ListOptions) ([]activity.Activity, error) {
	return s.acts, nil
}

type fakeAnalyzer struct {
	analysis *activity.Analysis
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, act *activity.Activity) (*activity.Analysis, error) {
	return a.analysis, nil
}

func newTestAgent(t *testing.T, driver Driver, confirm Confirmer) (*Agent, *ledger.Ledger) {
	t.Helper()

	led, err := ledger.Open(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })

	cfg := config.Default()
	cfg.Behavior.ConfirmationMode = true

	gen, err := generator.NewCommentGenerator(filepath.Join(t.TempDir(), "missing.txt"), cfg.Style)
	require.NoError(t, err)

	a := New(cfg, driver, led, gen, confirm, zap.NewNop())
	a.sleep = func(time.Duration) {}
	return a, led
}

func TestRunCommentsSkipsRecordedArticles(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{
		hot: []client.NewsItem{
			{ArticleID: "1001", Title: "旧闻"},
			{ArticleID: "1002", Title: "新闻"},
		},
		postOutcome: client.Outcome{Success: true},
	}
	// y confirms publishing the pasted comment
	confirm := &fakeConfirmer{answers: []string{"这事儿我支持", "y"}}
	a, led := newTestAgent(t, driver, confirm)

	require.NoError(t, led.RecordComment(ctx, "1001", "旧闻", "", "早评过了"))

	posted, err := a.RunComments(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, posted)
	require.Equal(t, []string{"1002"}, driver.postCalls)

	commented, err := led.HasCommented(ctx, "1002")
	require.NoError(t, err)
	require.True(t, commented)
}

func TestRunCommentsEmptyContentSkips(t *testing.T) {
	driver := &fakeDriver{
		hot:         []client.NewsItem{{ArticleID: "2001"}},
		postOutcome: client.Outcome{Success: true},
	}
	confirm := &fakeConfirmer{answers: []string{""}}
	a, _ := newTestAgent(t, driver, confirm)

	posted, err := a.RunComments(context.Background(), 1)
	require.NoError(t, err)
	require.Zero(t, posted)
	require.Empty(t, driver.postCalls)
}

func TestRunCommentsFailedPostNotRecorded(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{
		hot:         []client.NewsItem{{ArticleID: "3001"}},
		postOutcome: client.Outcome{Success: false, Err: "评论框未找到"},
	}
	confirm := &fakeConfirmer{answers: []string{"内容", "y"}}
	a, led := newTestAgent(t, driver, confirm)

	posted, err := a.RunComments(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, posted)

	commented, err := led.HasCommented(ctx, "3001")
	require.NoError(t, err)
	require.False(t, commented)
}

func TestRunActivitiesEntersFreshCampaign(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{publishOutcome: client.Outcome{Success: true}}
	// y participate, y use suggested operation, paste content, y publish
	confirm := &fakeConfirmer{answers: []string{"y", "y", "秋天真好 #秋日#", "y"}}
	a, led := newTestAgent(t, driver, confirm)

	// campaign 501 was already attempted once; only 502 is fresh
	require.NoError(t, led.RecordParticipation(ctx, ledger.Participation{
		ActivityID: "501", Operation: ledger.OpNotImplemented, Result: ledger.ResultSkipped,
	}))

	source := &fakeSource{acts: []activity.Activity{
		{ActivityID: 501, Title: "旧活动"},
		{ActivityID: 502, Title: "秋日征文", HashtagName: "秋日"},
	}}
	analyzer := &fakeAnalyzer{analysis: &activity.Analysis{
		Operation:  ledger.OpGenerateContent,
		Confidence: 0.9,
	}}

	entered, err := a.RunActivities(ctx, ctx, source, analyzer, 5)
	require.NoError(t, err)
	require.Equal(t, 1, entered)
	require.Equal(t, []string{"秋天真好 #秋日#"}, driver.publishCalls)

	participated, err := led.HasParticipated(ctx, "502")
	require.NoError(t, err)
	require.True(t, participated)

	heads, err := led.Headlines(ctx, 0)
	require.NoError(t, err)
	require.Len(t, heads, 1)
	require.Equal(t, "502", heads[0].ActivityID)
	require.Equal(t, "#秋日#", heads[0].Hashtags)
}

func TestRunActivitiesRecordsUnimplementedSkip(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{}
	// y participate, y use suggested operation, y record as skipped
	confirm := &fakeConfirmer{answers: []string{"y", "y", "y"}}
	a, led := newTestAgent(t, driver, confirm)

	source := &fakeSource{acts: []activity.Activity{{ActivityID: 601, Title: "一键活动"}}}
	analyzer := &fakeAnalyzer{analysis: &activity.Analysis{
		Operation:  ledger.OpOneClick,
		Confidence: 0.8,
	}}

	entered, err := a.RunActivities(ctx, ctx, source, analyzer, 1)
	require.NoError(t, err)
	require.Zero(t, entered)
	require.Empty(t, driver.publishCalls)

	processed, err := led.IsProcessed(ctx, "601")
	require.NoError(t, err)
	require.True(t, processed)

	recs, err := led.Participations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, ledger.OpNotImplemented, recs[0].Operation)
	require.Equal(t, ledger.ResultSkipped, recs[0].Result)
}

func TestRunActivitiesDeclinedCampaignLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	confirm := &fakeConfirmer{answers: []string{"n"}}
	a, led := newTestAgent(t, &fakeDriver{}, confirm)

	source := &fakeSource{acts: []activity.Activity{{ActivityID: 701, Title: "活动"}}}
	analyzer := &fakeAnalyzer{analysis: &activity.Analysis{Operation: ledger.OpGenerateContent}}

	entered, err := a.RunActivities(ctx, ctx, source, analyzer, 1)
	require.NoError(t, err)
	require.Zero(t, entered)

	// declining is not an attempt; the campaign stays fresh
	processed, err := led.IsProcessed(ctx, "701")
	require.NoError(t, err)
	require.False(t, processed)
}
