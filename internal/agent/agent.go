// Package agent orchestrates runs: pick work, gate it on the ledger and
// on operator confirmation, drive the browser, record what happened.
//
// The ledger is consulted before every action and written after every
// action. Ledger write failures are logged and do not abort the run;
// the action already happened, losing the record is the lesser harm.
package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yhzhou/ttagent/internal/client"
	"github.com/yhzhou/ttagent/internal/config"
	"github.com/yhzhou/ttagent/internal/generator"
	"github.com/yhzhou/ttagent/internal/ledger"
)

// Driver is the browser surface the agent drives. *client.Client
// satisfies it.
type Driver interface {
	HotNews(ctx context.Context, limit int) ([]client.NewsItem, error)
	Detail(ctx context.Context, articleID string) (*client.ArticleDetail, error)
	PostComment(ctx context.Context, articleID, content string) client.Outcome
	PublishHeadline(ctx context.Context, content, topic string) client.Outcome
}

// Agent ties the driver, ledger, generator, and operator together.
type Agent struct {
	cfg     *config.Config
	driver  Driver
	ledger  *ledger.Ledger
	gen     *generator.CommentGenerator
	confirm Confirmer
	log     *zap.Logger

	sleep func(time.Duration)
}

func New(cfg *config.Config, driver Driver, led *ledger.Ledger, gen *generator.CommentGenerator, confirm Confirmer, log *zap.Logger) *Agent {
	return &Agent{
		cfg:     cfg,
		driver:  driver,
		ledger:  led,
		gen:     gen,
		confirm: confirm,
		log:     log,
		sleep:   time.Sleep,
	}
}

// RunComments executes one comment run: fetch hot news, skip whatever
// was already commented on, and post up to count comments. It returns
// how many comments were posted.
func (a *Agent) RunComments(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		count = a.cfg.Behavior.MaxCommentsPerRun
	}

	// overshoot: some candidates will already be in the ledger
	items, err := a.driver.HotNews(ctx, count*3)
	if err != nil {
		return 0, fmt.Errorf("fetch hot news: %w", err)
	}
	a.log.Info("fetched hot news", zap.Int("candidates", len(items)))

	posted := 0
	for _, item := range items {
		if posted >= count {
			break
		}
		if err := ctx.Err(); err != nil {
			return posted, err
		}

		commented, err := a.ledger.HasCommented(ctx, item.ArticleID)
		if err != nil {
			a.log.Warn("ledger lookup failed, skipping article",
				zap.String("article_id", item.ArticleID), zap.Error(err))
			continue
		}
		if commented {
			a.log.Debug("already commented", zap.String("article_id", item.ArticleID))
			continue
		}

		ok, err := a.commentOn(ctx, item)
		if err != nil {
			return posted, err
		}
		if !ok {
			continue
		}
		posted++

		if posted < count {
			a.sleep(a.cfg.Behavior.CommentInterval())
		}
	}

	a.log.Info("comment run finished", zap.Int("posted", posted))
	return posted, nil
}

// commentOn handles one article end to end. It returns false when the
// article was skipped, and a non-nil error only for operator I/O
// failures that should end the run.
func (a *Agent) commentOn(ctx context.Context, item client.NewsItem) (bool, error) {
	detail, err := a.driver.Detail(ctx, item.ArticleID)
	if err != nil {
		a.log.Warn("fetch article detail failed",
			zap.String("article_id", item.ArticleID), zap.Error(err))
		return false, nil
	}

	prompt := a.gen.CommentPrompt(detail.Title, detail.Content)

	if !a.cfg.Behavior.ConfirmationMode {
		// unattended runs have no model hookup; surface the prompt and
		// move on
		fmt.Printf("\n文章: %s\n提示词:\n%s\n", detail.Title, prompt)
		return false, nil
	}

	fmt.Printf("\n文章: %s\n%s\n\n提示词:\n%s\n", detail.Title, detail.URL, prompt)
	fmt.Println("\n请将上述提示词发送给模型获取评论内容，然后粘贴回来。")
	content, err := a.confirm.Line("评论内容（留空跳过）: ")
	if err != nil {
		return false, fmt.Errorf("read comment content: %w", err)
	}
	if content == "" {
		return false, nil
	}

	yes, err := a.confirm.Confirm("确认发布此评论?")
	if err != nil {
		return false, fmt.Errorf("confirm comment: %w", err)
	}
	if !yes {
		return false, nil
	}

	outcome := a.driver.PostComment(ctx, item.ArticleID, content)
	if !outcome.Success {
		a.log.Warn("post comment failed",
			zap.String("article_id", item.ArticleID), zap.String("error", outcome.Err))
		fmt.Printf("发布失败: %s\n", outcome.Err)
		return false, nil
	}

	if err := a.ledger.RecordComment(ctx, item.ArticleID, detail.Title, detail.URL, content); err != nil {
		a.log.Error("comment posted but not recorded",
			zap.String("article_id", item.ArticleID), zap.Error(err))
	}
	fmt.Println("✓ 评论已发布")
	return true, nil
}
