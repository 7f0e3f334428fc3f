package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/pkg/browser"
	"go.uber.org/zap"

	"github.com/yhzhou/ttagent/internal/activity"
	"github.com/yhzhou/ttagent/internal/agent"
	"github.com/yhzhou/ttagent/internal/auth"
	"github.com/yhzhou/ttagent/internal/client"
	"github.com/yhzhou/ttagent/internal/config"
	"github.com/yhzhou/ttagent/internal/generator"
	"github.com/yhzhou/ttagent/internal/ledger"
	"github.com/yhzhou/ttagent/internal/scheduler"
	"github.com/yhzhou/ttagent/pkg/logger"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func authManager(cfg *config.Config) *auth.Manager {
	return auth.NewManager(auth.NewCookieStore(cfg.Browser.CookiesFile))
}

// requireAuth fails fast when no valid session is stored.
func requireAuth(mgr *auth.Manager) error {
	if !mgr.IsAuthenticated() {
		return fmt.Errorf("not logged in; run `ttagent login` first")
	}
	return nil
}

// newSession starts a browser and injects the stored login cookies.
// The caller must Close the returned client.
func newSession(ctx context.Context, cfg *config.Config, mgr *auth.Manager) (*client.Client, error) {
	c, err := client.New(ctx, cfg.Browser)
	if err != nil {
		return nil, err
	}
	cookies, err := mgr.Cookies()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("load stored cookies: %w", err)
	}
	if err := c.InjectCookies(cookies); err != nil {
		c.Close()
		return nil, err
	}
	if !c.IsLoggedIn() {
		fmt.Fprintln(os.Stderr, "警告: 登录状态可能已失效，建议重新运行 ttagent login")
	}
	return c, nil
}

// interactiveStack is everything an interactive run needs, built from one
// config load so all parts agree on paths and credentials.
type interactiveStack struct {
	mgr    *auth.Manager
	agent  *agent.Agent
	client *client.Client
}

// newInteractiveStack wires config, logger, ledger, browser session, and
// generator. The returned cleanup closes everything.
func newInteractiveStack(ctx context.Context) (*interactiveStack, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	mgr := authManager(cfg)
	if err := requireAuth(mgr); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	led, err := ledger.Open(cfg.Storage.DBFile)
	if err != nil {
		return nil, nil, err
	}

	c, err := newSession(ctx, cfg, mgr)
	if err != nil {
		led.Close()
		return nil, nil, err
	}

	gen, err := generator.NewCommentGenerator("", cfg.Style)
	if err != nil {
		c.Close()
		led.Close()
		return nil, nil, err
	}

	s := &interactiveStack{
		mgr:    mgr,
		agent:  agent.New(cfg, c, led, gen, agent.NewStdioConfirmer(), log),
		client: c,
	}
	cleanup := func() {
		c.Close()
		led.Close()
		log.Sync()
	}
	return s, cleanup, nil
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runLogin() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	creds := config.LoadCredentials()
	if !creds.Valid() {
		return fmt.Errorf("set TOUTIAO_USERNAME and TOUTIAO_PASSWORD (a .env file works)")
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Println("正在打开浏览器登录头条...")
	if err := authManager(cfg).Login(ctx, creds); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Println("✓ 登录成功，Cookie 已保存")
	return nil
}

func runLogout() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := authManager(cfg).Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Println("✓ 已清除登录状态")
	return nil
}

func runHotNews(limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	c, err := newSession(ctx, cfg, authManager(cfg))
	if err != nil {
		return err
	}
	defer c.Close()

	items, err := c.HotNews(ctx, limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("没有找到热点新闻")
		return nil
	}
	for i, item := range items {
		fmt.Printf("%d. %s\n   %s\n", i+1, item.Title, item.URL)
	}
	return nil
}

func runSearch(keyword string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	c, err := newSession(ctx, cfg, authManager(cfg))
	if err != nil {
		return err
	}
	defer c.Close()

	items, err := c.SearchNews(ctx, keyword, limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Printf("没有找到与 %q 相关的文章\n", keyword)
		return nil
	}
	for i, item := range items {
		fmt.Printf("%d. %s\n   %s\n", i+1, item.Title, item.URL)
	}
	return nil
}

func runComment(count int) error {
	ctx, cancel := interruptContext()
	defer cancel()

	s, cleanup, err := newInteractiveStack(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	posted, err := s.agent.RunComments(ctx, count)
	if err != nil {
		return err
	}
	fmt.Printf("\n本次共发布 %d 条评论\n", posted)
	return nil
}

func runHistory(limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	led, err := ledger.Open(cfg.Storage.DBFile)
	if err != nil {
		return err
	}
	defer led.Close()

	records, err := led.Comments(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("还没有评论记录")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "时间\t文章\t评论")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Title, r.Content)
	}
	return w.Flush()
}

func runStats() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	led, err := ledger.Open(cfg.Storage.DBFile)
	if err != nil {
		return err
	}
	defer led.Close()

	ctx := context.Background()
	comments, err := led.CountComments(ctx)
	if err != nil {
		return err
	}
	headlines, err := led.CountHeadlines(ctx)
	if err != nil {
		return err
	}
	parts, err := led.CountParticipations(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("评论总数: %d\n", comments)
	fmt.Printf("微头条总数: %d\n", headlines)
	fmt.Printf("活动: 尝试 %d 次，涉及 %d 个活动，确认参与 %d 个\n",
		parts.Attempts, parts.Activities, parts.Participated)
	return nil
}

func runPostHeadline(content, topic, activityID, activityTitle string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mgr := authManager(cfg)
	if err := requireAuth(mgr); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	led, err := ledger.Open(cfg.Storage.DBFile)
	if err != nil {
		return err
	}
	defer led.Close()

	c, err := newSession(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	defer c.Close()

	outcome := c.PublishHeadline(ctx, content, topic)
	if !outcome.Success {
		return fmt.Errorf("publish headline: %s", outcome.Err)
	}

	rec := &ledger.HeadlineRecord{
		ActivityID:    activityID,
		ActivityTitle: activityTitle,
		Content:       content,
		Hashtags:      topic,
	}
	if err := led.RecordHeadline(ctx, rec); err != nil {
		// published but unrecorded; surface it, the post is already out
		fmt.Fprintf(os.Stderr, "警告: 微头条已发布但未入库: %v\n", err)
	}
	fmt.Println("✓ 微头条已发布")
	return nil
}

func runHeadlines(limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	led, err := ledger.Open(cfg.Storage.DBFile)
	if err != nil {
		return err
	}
	defer led.Close()

	records, err := led.Headlines(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("还没有微头条记录")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "时间\t状态\t活动\t内容")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Status, r.ActivityTitle, r.Content)
	}
	return w.Flush()
}

func runActivities(limit int, all bool, category string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mgr := authManager(cfg)
	if err := requireAuth(mgr); err != nil {
		return err
	}
	led, err := ledger.Open(cfg.Storage.DBFile)
	if err != nil {
		return err
	}
	defer led.Close()

	ctx, cancel := interruptContext()
	defer cancel()

	fetcher := activity.NewFetcher("", mgr)
	if category != "" && category != "全部" {
		switch names, err := fetcher.Categories(ctx); {
		case err != nil:
			fmt.Fprintf(os.Stderr, "警告: 获取分类列表失败: %v\n", err)
		case !slices.Contains(names, category):
			return fmt.Errorf("未知分类 %q，可选: %s", category, strings.Join(names, "、"))
		}
	}
	acts, err := fetcher.List(ctx, activity.ListOptions{
		Limit:               limit,
		Category:            category,
		IncludeEnded:        all,
		IncludeParticipated: all,
	})
	if err != nil {
		return err
	}
	if len(acts) == 0 {
		fmt.Println("没有找到活动")
		return nil
	}

	for i, act := range acts {
		fmt.Printf("%d. %s\n", i+1, act.Title)
		if act.Introduction != "" {
			fmt.Printf("   简介: %s\n", act.Introduction)
		}
		if h := act.Hashtag(); h != "" {
			fmt.Printf("   话题: %s\n", h)
		}
		fmt.Printf("   时间: %s  奖励: %s  参与: %s 人\n",
			act.ActivityTime, act.Reward, act.Participants)

		switch participated, err := led.HasParticipated(ctx, act.ID()); {
		case err != nil:
			fmt.Fprintf(os.Stderr, "警告: 查询参与状态失败: %v\n", err)
		case participated:
			fmt.Println("   状态: ✓ 已参与")
		default:
			if processed, err := led.IsProcessed(ctx, act.ID()); err == nil && processed {
				fmt.Println("   状态: 已处理（未确认参与）")
			}
		}
		fmt.Printf("   ID: %s\n\n", act.ID())
	}
	return nil
}

func runParticipate(count int) error {
	ctx, cancel := interruptContext()
	defer cancel()

	s, cleanup, err := newInteractiveStack(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	fetcher := activity.NewFetcher("", s.mgr)
	analyzer := activity.NewAnalyzer()

	entered, err := s.agent.RunActivities(ctx, s.client.Context(), fetcher, analyzer, count)
	if err != nil {
		return err
	}
	fmt.Printf("\n本次共参与 %d 个活动\n", entered)
	return nil
}

func runActivityHistory(limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	led, err := ledger.Open(cfg.Storage.DBFile)
	if err != nil {
		return err
	}
	defer led.Close()

	records, err := led.Participations(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("还没有活动参与记录")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "时间\t活动\t操作\t确认\t结果")
	for _, r := range records {
		confirmed := "否"
		if r.UserConfirmed {
			confirmed = "是"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.ActivityTitle, r.Operation, confirmed, r.Result)
	}
	return w.Flush()
}

func runStart() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mgr := authManager(cfg)
	if err := requireAuth(mgr); err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	// unattended runs cannot prompt anyone
	cfg.Behavior.ConfirmationMode = false

	sched, err := scheduler.New(cfg.Schedule.Timezone, log)
	if err != nil {
		return err
	}

	err = sched.AddCommentJob(cfg.Schedule.RunIntervalHours, func(jobCtx context.Context) error {
		led, err := ledger.Open(cfg.Storage.DBFile)
		if err != nil {
			return err
		}
		defer led.Close()

		c, err := newSession(jobCtx, cfg, mgr)
		if err != nil {
			return err
		}
		defer c.Close()

		gen, err := generator.NewCommentGenerator("", cfg.Style)
		if err != nil {
			return err
		}

		a := agent.New(cfg, c, led, gen, agent.NewStdioConfirmer(), log)
		_, err = a.RunComments(jobCtx, 0)
		return err
	})
	if err != nil {
		return err
	}

	sched.Start()
	log.Info("agent started", zap.Int("interval_hours", cfg.Schedule.RunIntervalHours))

	ctx, cancel := interruptContext()
	defer cancel()
	<-ctx.Done()

	<-sched.Stop().Done()
	log.Info("agent stopped")
	return nil
}

func runConfigShow() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := cfg.Dump()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runOpen(target string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch target {
	case "config":
		path := cfgFile
		if path == "" {
			path = "config.yaml"
		}
		return browser.OpenFile(path)
	case "data":
		return browser.OpenFile(filepath.Dir(cfg.Storage.DBFile))
	default:
		return fmt.Errorf("unknown target %q (want config or data)", target)
	}
}
