package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://mp.toutiao.com/mp/agw/activity"
	appID          = "1231"
	bizID          = "1"

	defaultCategory = "全部"
)

// CookieSource supplies the logged-in session cookies for API calls.
type CookieSource interface {
	CookieHeader() (string, error)
}

// Fetcher talks to the creator-platform activity API. It needs an
// authenticated cookie jar but no browser.
type Fetcher struct {
	baseURL string
	http    *http.Client
	cookies CookieSource
}

// NewFetcher returns a Fetcher calling baseURL, or the production
// endpoint when baseURL is empty.
func NewFetcher(baseURL string, cookies CookieSource) *Fetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Fetcher{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		cookies: cookies,
	}
}

// ListOptions narrow a List call. The zero value asks for the first
// page of open, not-yet-entered campaigns across all categories.
type ListOptions struct {
	Offset              int
	Limit               int
	Category            string
	IncludeEnded        bool
	IncludeParticipated bool
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// List fetches one page of campaigns. Campaigns whose end time has
// already passed are dropped unless IncludeEnded is set, since the API
// sometimes returns stale entries.
func (f *Fetcher) List(ctx context.Context, opts ListOptions) ([]Activity, error) {
	if opts.Limit <= 0 {
		opts.Limit = 24
	}
	if opts.Category == "" {
		opts.Category = defaultCategory
	}

	params := url.Values{}
	params.Set("offset", strconv.Itoa(opts.Offset))
	params.Set("limit", strconv.Itoa(opts.Limit))
	if opts.IncludeEnded {
		params.Set("act_status", "")
	} else {
		params.Set("act_status", "0")
	}
	if opts.IncludeParticipated {
		params.Set("part_status", "")
	} else {
		params.Set("part_status", "0")
	}
	params.Set("title", "")
	params.Set("category", opts.Category)
	params.Set("biz_id", bizID)
	params.Set("sort_type", "1")
	params.Set("enter_from", "")
	params.Set("online_platform_index", "0")
	params.Set("enter_from_mp", "2")
	params.Set("media_id", "0")
	params.Set("app_id", appID)

	var data struct {
		ActivityList []Activity `json:"activity_list"`
	}
	if err := f.get(ctx, "/list/v2/", params, &data); err != nil {
		return nil, err
	}

	acts := data.ActivityList
	if !opts.IncludeEnded {
		now := time.Now()
		open := acts[:0]
		for _, a := range acts {
			if !a.Expired(now) {
				open = append(open, a)
			}
		}
		acts = open
	}
	return acts, nil
}

// Categories fetches the campaign category names; the catch-all
// category is always first.
func (f *Fetcher) Categories(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("act_status", "0")
	params.Set("biz_id", bizID)
	params.Set("app_id", appID)

	var data []struct {
		Name string `json:"name"`
	}
	if err := f.get(ctx, "/get_all_category/", params, &data); err != nil {
		return nil, err
	}

	names := []string{defaultCategory}
	for _, c := range data {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names, nil
}

func (f *Fetcher) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	cookie, err := f.cookies.CookieHeader()
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}
	req.Header.Set("Cookie", cookie)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://mp.toutiao.com/profile_v4/activity/task-list")

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("activity api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("activity api: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("activity api: read body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("activity api: decode envelope: %w", err)
	}
	if env.Code != 0 {
		return fmt.Errorf("activity api: code %d: %s", env.Code, env.Message)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("activity api: decode data: %w", err)
	}
	return nil
}
