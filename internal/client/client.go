// Package client drives a live browser session against the Toutiao web
// front-end. It is best-effort glue over a volatile, selector-fragile UI:
// every operation probes several selectors, reports failure as a value, and
// never guarantees the site cooperated.
package client

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/yhzhou/ttagent/internal/browser"
	"github.com/yhzhou/ttagent/internal/config"
)

// NewsItem is one candidate article from a listing or search page.
type NewsItem struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// ArticleDetail is the scraped detail of a single article.
type ArticleDetail struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	URL       string `json:"url"`
}

// Outcome is the result of an act-on-item call. Err carries a human-readable
// description when Success is false.
type Outcome struct {
	Success bool   `json:"success"`
	Err     string `json:"error,omitempty"`
}

// Client holds a live browser session. The session persists across
// operations so login state carries between navigations; Close releases it.
type Client struct {
	browserCtx context.Context
	cancels    []context.CancelFunc
	pause      time.Duration
}

// New starts a browser session using cfg and returns a Client bound to it.
func New(ctx context.Context, cfg config.BrowserConfig) (*Client, error) {
	opts := browser.Options(cfg.Headless, cfg.UserDataDir)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Starting the browser eagerly surfaces launch failures here instead of
	// on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Client{
		browserCtx: browserCtx,
		cancels:    []context.CancelFunc{browserCancel, allocCancel},
		pause:      time.Duration(cfg.SlowMoMs) * time.Millisecond,
	}, nil
}

// Close shuts the browser session down.
func (c *Client) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
}

// opContext scopes one operation: bounded by timeout on the session context
// and cancelled early if the caller's ctx is done.
func (c *Client) opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(c.browserCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() { stop(); cancel() }
}

// Context returns the live browser context for callers that need to run
// their own page actions in this session (e.g. the activity analyzer).
func (c *Client) Context() context.Context {
	return c.browserCtx
}

// InjectCookies sets saved session cookies in the browser.
func (c *Client) InjectCookies(cookies []*network.Cookie) error {
	return chromedp.Run(c.browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, ck := range cookies {
				err := network.SetCookie(ck.Name, ck.Value).
					WithDomain(ck.Domain).
					WithPath(ck.Path).
					WithSecure(ck.Secure).
					WithHTTPOnly(ck.HTTPOnly).
					WithSameSite(ck.SameSite).
					Do(ctx)
				if err != nil {
					return err
				}
			}
			return nil
		}),
	)
}

// IsLoggedIn probes the home page for a logged-in avatar.
func (c *Client) IsLoggedIn() bool {
	var hasAvatar bool
	err := chromedp.Run(c.browserCtx,
		chromedp.Navigate(homeURL),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(`document.querySelector('.user-avatar, .avatar') !== null`, &hasAvatar),
	)
	return err == nil && hasAvatar
}

// HotNews scrapes candidate articles from the rendered home page. Results
// are id-deduplicated and capped at limit; filtering against the ledger is
// the caller's job.
func (c *Client) HotNews(ctx context.Context, limit int) ([]NewsItem, error) {
	runCtx, cancel := c.opContext(ctx, 2*time.Minute)
	defer cancel()

	extractJS := fmt.Sprintf(`
		(() => {
			const selectors = %s;
			const results = [];
			const seen = new Set();

			for (const selector of selectors) {
				for (const link of document.querySelectorAll(selector)) {
					const href = link.getAttribute('href') || '';
					const match = href.match(/\/(group|article)\/(\d+)/);
					if (!match) continue;
					const id = match[2];
					if (seen.has(id)) continue;

					const titleEl = link.querySelector('.title, h1, h2, h3');
					let title = (titleEl ? titleEl.textContent : link.textContent) || '';
					title = title.trim();
					if (title.length <= 5) continue;

					seen.add(id);
					results.push({
						article_id: id,
						title: title.slice(0, 100),
						url: new URL(href, location.origin).href,
					});
				}
				if (results.length > 0) break;
			}
			return results;
		})()
	`, browser.JSStringArray(newsLinkSelectors))

	var items []NewsItem
	err := chromedp.Run(runCtx,
		chromedp.Navigate(homeURL),
		chromedp.Sleep(3*time.Second+c.pause),
		chromedp.Evaluate(extractJS, &items),
	)
	if err != nil {
		return nil, fmt.Errorf("scrape hot news: %w", err)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var (
	searchArticleRe = regexp.MustCompile(`article/(\d{10,})`)
	searchTitleRe   = regexp.MustCompile(`"Title":"([^"]{1,100})"`)
)

// SearchNews scrapes the rendered search page for keyword. The search page
// renders results from inline JSON, so candidates are pulled from the raw
// HTML: article ids by URL pattern, titles from the nearest Title field.
func (c *Client) SearchNews(ctx context.Context, keyword string, limit int) ([]NewsItem, error) {
	runCtx, cancel := c.opContext(ctx, 2*time.Minute)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(fmt.Sprintf(searchURLFormat, url.QueryEscape(keyword))),
		chromedp.Sleep(3*time.Second+c.pause),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("scrape search %q: %w", keyword, err)
	}

	seen := make(map[string]bool)
	var items []NewsItem
	for _, loc := range searchArticleRe.FindAllStringSubmatchIndex(html, -1) {
		id := html[loc[2]:loc[3]]
		if seen[id] {
			continue
		}
		seen[id] = true

		// Look for a Title field near the article id in the inline JSON.
		start := max(0, loc[0]-500)
		end := min(len(html), loc[1]+500)
		title := ""
		if m := searchTitleRe.FindStringSubmatch(html[start:end]); m != nil {
			if unquoted, err := url.QueryUnescape(m[1]); err == nil {
				title = unquoted
			} else {
				title = m[1]
			}
		}
		if title == "" {
			continue
		}

		items = append(items, NewsItem{
			ArticleID: id,
			Title:     title,
			URL:       fmt.Sprintf(articleURLFormat, id),
		})
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

// Detail scrapes the rendered article page.
func (c *Client) Detail(ctx context.Context, articleID string) (*ArticleDetail, error) {
	runCtx, cancel := c.opContext(ctx, time.Minute)
	defer cancel()

	extractJS := fmt.Sprintf(`
		(() => {
			const titleEl = document.querySelector(%s);
			const contentEl = document.querySelector(%s);
			return {
				title: titleEl?.textContent?.trim() || '',
				content: contentEl?.textContent?.substring(0, 500) || '',
				url: window.location.href,
			};
		})()
	`, browser.JSString(articleTitle), browser.JSString(articleContent))

	detail := &ArticleDetail{ArticleID: articleID}
	err := chromedp.Run(runCtx,
		chromedp.Navigate(fmt.Sprintf(groupURLFormat, articleID)),
		chromedp.Sleep(3*time.Second+c.pause),
		chromedp.Evaluate(extractJS, detail),
	)
	if err != nil {
		return nil, fmt.Errorf("scrape article %s: %w", articleID, err)
	}
	return detail, nil
}

// PostComment navigates to the article and submits content through the
// comment form. The form is probed across both article URL formats and two
// submit paths (Enter, then an explicit button); the outcome reports the
// first hard failure.
func (c *Client) PostComment(ctx context.Context, articleID, content string) Outcome {
	runCtx, cancel := c.opContext(ctx, 3*time.Minute)
	defer cancel()

	urls := []string{
		fmt.Sprintf(articleURLFormat, articleID),
		fmt.Sprintf(groupURLFormat, articleID),
	}
	var navErr error
	for _, u := range urls {
		navErr = chromedp.Run(runCtx,
			chromedp.Navigate(u),
			chromedp.Sleep(3*time.Second+c.pause),
		)
		if navErr == nil {
			break
		}
	}
	if navErr != nil {
		return Outcome{Err: fmt.Sprintf("open article: %v", navErr)}
	}

	// Bring the comment form into view and focus it.
	var hasArea bool
	err := chromedp.Run(runCtx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(fmt.Sprintf(`(() => {
			const area = document.querySelector(%s);
			if (!area) return false;
			area.click();
			return true;
		})()`, browser.JSString(commentArea)), &hasArea),
	)
	if err != nil {
		return Outcome{Err: fmt.Sprintf("locate comment area: %v", err)}
	}
	if !hasArea {
		return Outcome{Err: "comment area not found"}
	}

	var filled bool
	err = chromedp.Run(runCtx,
		chromedp.Sleep(time.Second),
		chromedp.Evaluate(fmt.Sprintf(`((text) => {
			const editable = document.querySelector(%s);
			if (!editable) return false;
			editable.focus();
			editable.textContent = text;
			editable.dispatchEvent(new Event('input', { bubbles: true }));
			return true;
		})(%s)`, browser.JSString(commentEditable), browser.JSString(content)), &filled),
	)
	if err != nil || !filled {
		return Outcome{Err: "comment input not found"}
	}

	// Enter usually submits; when it does not, fall back to the comment
	// button inside the comment block.
	var remaining string
	err = chromedp.Run(runCtx,
		chromedp.KeyEvent(kb.Enter),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(fmt.Sprintf(`(() => {
			const editable = document.querySelector(%s);
			return editable ? (editable.textContent || '').trim() : '';
		})()`, browser.JSString(commentEditable)), &remaining),
	)
	if err != nil {
		return Outcome{Err: fmt.Sprintf("submit comment: %v", err)}
	}

	if remaining != "" {
		clickJS := fmt.Sprintf(`(() => {
			const block = document.querySelector(%s);
			if (!block) return false;
			const btn = Array.from(block.querySelectorAll('button'))
				.find(b => b.textContent && b.textContent.includes('评论'));
			if (!btn) return false;
			btn.click();
			return true;
		})()`, browser.JSString(commentBlock))

		var clicked bool
		if err := chromedp.Run(runCtx,
			chromedp.Evaluate(clickJS, &clicked),
			chromedp.Sleep(3*time.Second),
		); err != nil || !clicked {
			return Outcome{Err: "comment submit button not found"}
		}
	}

	return Outcome{Success: true}
}

// PublishHeadline publishes a micro-headline through the creator-platform
// form. The topic hashtag, when given, is appended to the content unless
// already present.
func (c *Client) PublishHeadline(ctx context.Context, content, topic string) Outcome {
	runCtx, cancel := c.opContext(ctx, 3*time.Minute)
	defer cancel()

	if topic != "" && !strings.Contains(content, topic) {
		content = content + "\n" + topic
	}

	err := chromedp.Run(runCtx,
		chromedp.Navigate(headlinePublisher),
		chromedp.Sleep(5*time.Second+c.pause),
	)
	if err != nil {
		return Outcome{Err: fmt.Sprintf("open publisher: %v", err)}
	}

	var filled bool
	err = chromedp.Run(runCtx,
		chromedp.Evaluate(fmt.Sprintf(`((text) => {
			const editor = document.querySelector(%s);
			if (!editor) return false;
			editor.focus();
			editor.textContent = text;
			editor.dispatchEvent(new Event('input', { bubbles: true }));
			return true;
		})(%s)`, browser.JSString(headlineEditor), browser.JSString(content)), &filled),
	)
	if err != nil || !filled {
		return Outcome{Err: "publish editor not found"}
	}

	var clicked bool
	err = chromedp.Run(runCtx,
		chromedp.Sleep(time.Second),
		chromedp.Evaluate(fmt.Sprintf(`(() => {
			for (const btn of document.querySelectorAll('button')) {
				if (btn.textContent && btn.textContent.trim().startsWith(%s) && !btn.disabled) {
					btn.click();
					return true;
				}
			}
			return false;
		})()`, browser.JSString(headlinePublishBn)), &clicked),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return Outcome{Err: fmt.Sprintf("submit headline: %v", err)}
	}
	if !clicked {
		return Outcome{Err: "publish button not found"}
	}

	return Outcome{Success: true}
}
