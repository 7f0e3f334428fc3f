package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yhzhou/ttagent/internal/activity"
	"github.com/yhzhou/ttagent/internal/generator"
	"github.com/yhzhou/ttagent/internal/ledger"
)

// ActivitySource lists open campaigns. *activity.Fetcher satisfies it.
type ActivitySource interface {
	List(ctx context.Context, opts activity.ListOptions) ([]activity.Activity, error)
}

// PageAnalyzer classifies a campaign page. *activity.Analyzer satisfies
// it when given the browser context.
type PageAnalyzer interface {
	Analyze(browserCtx context.Context, act *activity.Activity) (*activity.Analysis, error)
}

// operationMenu maps operator menu choices to operations, for when the
// operator overrides the analyzer's guess.
var operationMenu = map[string]ledger.OperationKind{
	"1": ledger.OpGenerateContent,
	"2": ledger.OpLikeShare,
	"3": ledger.OpFillForm,
	"4": ledger.OpOneClick,
	"5": ledger.OpOther,
}

// RunActivities executes one campaign run: list open campaigns, skip
// the ones the ledger has already seen, and walk the operator through
// up to count of the rest. browserCtx is the live chromedp context used
// for page analysis. It returns how many campaigns were entered.
func (a *Agent) RunActivities(ctx, browserCtx context.Context, source ActivitySource, analyzer PageAnalyzer, count int) (int, error) {
	if count <= 0 {
		count = 1
	}

	acts, err := source.List(ctx, activity.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("fetch activities: %w", err)
	}
	a.log.Info("fetched activities", zap.Int("candidates", len(acts)))

	var fresh []activity.Activity
	for _, act := range acts {
		processed, err := a.ledger.IsProcessed(ctx, act.ID())
		if err != nil {
			a.log.Warn("ledger lookup failed, skipping activity",
				zap.String("activity_id", act.ID()), zap.Error(err))
			continue
		}
		if !processed {
			fresh = append(fresh, act)
		}
	}
	if len(fresh) == 0 {
		fmt.Println("没有新活动")
		return 0, nil
	}
	if len(fresh) > count {
		fresh = fresh[:count]
	}

	entered := 0
	for i := range fresh {
		if err := ctx.Err(); err != nil {
			return entered, err
		}
		ok, err := a.participate(ctx, browserCtx, analyzer, &fresh[i])
		if err != nil {
			return entered, err
		}
		if ok {
			entered++
			if i < len(fresh)-1 {
				a.sleep(a.cfg.Behavior.CommentInterval())
			}
		}
	}

	a.log.Info("activity run finished", zap.Int("entered", entered))
	return entered, nil
}

func (a *Agent) participate(ctx, browserCtx context.Context, analyzer PageAnalyzer, act *activity.Activity) (bool, error) {
	fmt.Printf("\n活动: %s\n介绍: %s\n", act.Title, act.Introduction)
	if h := act.Hashtag(); h != "" {
		fmt.Printf("话题: %s\n", h)
	}
	fmt.Printf("奖励: %s\n参与: %s 人\n", act.Reward, act.Participants)

	if a.cfg.Behavior.ConfirmationMode {
		yes, err := a.confirm.Confirm("是否参与此活动?")
		if err != nil {
			return false, fmt.Errorf("confirm activity: %w", err)
		}
		if !yes {
			return false, nil
		}
	}

	fmt.Println("正在分析活动类型...")
	analysis, err := analyzer.Analyze(browserCtx, act)
	if err != nil {
		a.log.Warn("activity analysis failed",
			zap.String("activity_id", act.ID()), zap.Error(err))
		fmt.Printf("分析失败: %v\n", err)
		return false, nil
	}

	fmt.Printf("\n操作类型: %s\n置信度: %.0f%%\n建议: %s\n",
		analysis.Operation, analysis.Confidence*100, analysis.Suggestion)

	op := analysis.Operation
	if a.cfg.Behavior.ConfirmationMode {
		yes, err := a.confirm.Confirm("是否使用此方式?")
		if err != nil {
			return false, fmt.Errorf("confirm operation: %w", err)
		}
		if !yes {
			fmt.Println("1. 生成原创微头条  2. 点赞/转发  3. 填写表单  4. 一键参与  5. 其他")
			choice, err := a.confirm.Line("请选择操作方式 (1-5): ")
			if err != nil {
				return false, fmt.Errorf("read operation choice: %w", err)
			}
			picked, ok := operationMenu[choice]
			if !ok {
				picked = ledger.OpOther
			}
			op = picked
		}
	}

	if op != ledger.OpGenerateContent {
		return false, a.skipUnimplemented(ctx, act, op)
	}
	return a.enterWithHeadline(ctx, act, analysis)
}

// enterWithHeadline runs the publish-an-original-post entry flow.
func (a *Agent) enterWithHeadline(ctx context.Context, act *activity.Activity, analysis *activity.Analysis) (bool, error) {
	hashtag := act.Hashtag()
	prompt := generator.HeadlinePrompt(act.Title, act.Introduction, hashtag)

	if !a.cfg.Behavior.ConfirmationMode {
		fmt.Printf("\n提示词:\n%s\n", prompt)
		return false, nil
	}

	fmt.Printf("\n提示词:\n%s\n", prompt)
	fmt.Println("\n请将上述提示词发送给模型获取微头条内容，然后粘贴回来。")
	content, err := a.confirm.Line("微头条内容（留空跳过）: ")
	if err != nil {
		return false, fmt.Errorf("read headline content: %w", err)
	}
	if content == "" {
		return false, nil
	}

	yes, err := a.confirm.Confirm("确认发布?")
	if err != nil {
		return false, fmt.Errorf("confirm publish: %w", err)
	}
	if !yes {
		return false, nil
	}

	outcome := a.driver.PublishHeadline(ctx, content, hashtag)
	result := ledger.ResultSuccess
	if !outcome.Success {
		result = outcome.Err
		if result == "" {
			result = "failed"
		}
		fmt.Printf("发布失败: %s\n", result)
	} else {
		fmt.Println("✓ 微头条已发布")
		rec := &ledger.HeadlineRecord{
			ActivityID:    act.ID(),
			ActivityTitle: act.Title,
			Content:       content,
			Hashtags:      hashtag,
		}
		if err := a.ledger.RecordHeadline(ctx, rec); err != nil {
			a.log.Error("headline published but not recorded",
				zap.String("activity_id", act.ID()), zap.Error(err))
		}
	}

	err = a.ledger.RecordParticipation(ctx, ledger.Participation{
		ActivityID:    act.ID(),
		ActivityTitle: act.Title,
		Operation:     ledger.OpGenerateContent,
		Confidence:    analysis.Confidence,
		Detail:        analysis,
		UserConfirmed: true,
		Result:        result,
	})
	if err != nil {
		a.log.Error("participation not recorded",
			zap.String("activity_id", act.ID()), zap.Error(err))
	}
	return outcome.Success, nil
}

// skipUnimplemented records, with operator consent, that a campaign
// needs an entry flow the agent does not have.
func (a *Agent) skipUnimplemented(ctx context.Context, act *activity.Activity, op ledger.OperationKind) error {
	fmt.Printf("\n暂未实现操作类型: %s\n请手动参与活动，或改用生成原创内容方式。\n", op)
	if !a.cfg.Behavior.ConfirmationMode {
		return nil
	}

	yes, err := a.confirm.Confirm("是否记录此活动为已跳过?")
	if err != nil {
		return fmt.Errorf("confirm skip: %w", err)
	}
	if !yes {
		return nil
	}

	err = a.ledger.RecordParticipation(ctx, ledger.Participation{
		ActivityID:    act.ID(),
		ActivityTitle: act.Title,
		Operation:     ledger.OpNotImplemented,
		UserConfirmed: true,
		Result:        ledger.ResultSkipped,
	})
	if err != nil {
		a.log.Error("skip not recorded",
			zap.String("activity_id", act.ID()), zap.Error(err))
	} else {
		fmt.Println("✓ 已记录为已跳过")
	}
	return nil
}
