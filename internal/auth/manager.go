package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/yhzhou/ttagent/internal/browser"
	"github.com/yhzhou/ttagent/internal/config"
)

// Manager handles platform authentication.
type Manager struct {
	cookieStore *CookieStore
}

// NewManager creates a new auth manager.
func NewManager(cookieStore *CookieStore) *Manager {
	return &Manager{cookieStore: cookieStore}
}

// IsAuthenticated checks if valid session cookies are stored.
func (m *Manager) IsAuthenticated() bool {
	return m.cookieStore.IsValid()
}

// Cookies returns the stored session cookies.
func (m *Manager) Cookies() ([]*network.Cookie, error) {
	return m.cookieStore.Cookies()
}

// CookieHeader returns stored cookies as a request-header value.
func (m *Manager) CookieHeader() (string, error) {
	return m.cookieStore.Header()
}

// Logout clears stored credentials.
func (m *Manager) Logout() error {
	return m.cookieStore.Clear()
}

// Login drives the account-password login flow in a visible browser window
// and saves the resulting session cookies. The window stays visible because
// the site frequently demands a slider captcha or SMS verification that only
// a human can complete; the flow fills what it can and then waits for login
// cookies to appear.
func (m *Manager) Login(ctx context.Context, creds config.Credentials) error {
	if !creds.Valid() {
		return fmt.Errorf("missing credentials: set TOUTIAO_USERNAME and TOUTIAO_PASSWORD")
	}
	if m.IsAuthenticated() {
		return nil
	}

	// Always headful for login.
	opts := browser.Options(false, "")

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate("https://www.toutiao.com/"),
		chromedp.Sleep(3*time.Second),
	); err != nil {
		return fmt.Errorf("open home page: %w", err)
	}

	if err := m.fillLoginForm(browserCtx, creds); err != nil {
		return err
	}

	if err := m.waitForLogin(browserCtx, 2*time.Minute); err != nil {
		return fmt.Errorf("login not confirmed: %w", err)
	}

	cookies, err := extractCookies(browserCtx)
	if err != nil {
		return fmt.Errorf("extract cookies: %w", err)
	}
	if err := m.cookieStore.Save(cookies); err != nil {
		return fmt.Errorf("save cookies: %w", err)
	}
	return nil
}

// fillLoginForm clicks through the login dialog and fills the credential
// fields. Every interaction goes through JS evaluation: the login button has
// a zero-sized CSS box and several inputs only respond to synthetic events.
func (m *Manager) fillLoginForm(ctx context.Context, creds config.Credentials) error {
	var clicked bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`(() => {
			const btn = document.querySelector('.login-button');
			if (!btn) return false;
			btn.click();
			return true;
		})()`, &clicked),
	)
	if err != nil {
		return fmt.Errorf("click login button: %w", err)
	}
	if !clicked {
		// No login button: most likely already logged in.
		return nil
	}

	// The dialog loads asynchronously; wait for the password-login tab.
	if err := chromedp.Run(ctx,
		chromedp.Sleep(3*time.Second),
		chromedp.WaitVisible(`[aria-label="账密登录"]`, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("password login tab not shown: %w", err)
	}

	var filled bool
	err = chromedp.Run(ctx,
		chromedp.Evaluate(`(() => {
			const el = document.querySelector('[aria-label="账密登录"]');
			if (!el) return false;
			el.dispatchEvent(new MouseEvent('mousedown', { bubbles: true, cancelable: true }));
			el.dispatchEvent(new MouseEvent('mouseup', { bubbles: true, cancelable: true }));
			el.dispatchEvent(new MouseEvent('click', { bubbles: true, cancelable: true }));
			return true;
		})()`, &filled),
		chromedp.Sleep(2*time.Second),
	)
	if err != nil || !filled {
		return fmt.Errorf("select password login: %w", err)
	}

	fill := func(selectors []string, value string) chromedp.Action {
		js := fmt.Sprintf(`((selectors, value) => {
			for (const sel of selectors) {
				const input = document.querySelector(sel);
				if (input && input.offsetParent !== null) {
					input.value = value;
					input.dispatchEvent(new Event('input', { bubbles: true }));
					input.dispatchEvent(new Event('blur', { bubbles: true }));
					return true;
				}
			}
			return false;
		})(%s, %s)`, browser.JSStringArray(selectors), browser.JSString(value))
		return chromedp.Evaluate(js, &filled)
	}

	usernameSelectors := []string{
		`input[placeholder="手机号/邮箱"]`,
		`input[placeholder*="手机号"]`,
		`input[name="mobile"]`,
		`input[name="username"]`,
		`.web-login-account-input__input`,
	}
	if err := chromedp.Run(ctx, fill(usernameSelectors, creds.Username)); err != nil || !filled {
		return fmt.Errorf("fill username: no visible input matched")
	}

	passwordSelectors := []string{
		`input[type="password"]`,
		`input[name="password"]`,
		`.web-login-password-input__input`,
	}
	if err := chromedp.Run(ctx, fill(passwordSelectors, creds.Password)); err != nil || !filled {
		return fmt.Errorf("fill password: no visible input matched")
	}

	var submitted bool
	err = chromedp.Run(ctx,
		chromedp.Evaluate(`(() => {
			for (const btn of document.querySelectorAll('button')) {
				if (btn.textContent && btn.textContent.includes('登录')) {
					btn.click();
					return true;
				}
			}
			return false;
		})()`, &submitted),
	)
	if err != nil || !submitted {
		return fmt.Errorf("submit login form: no submit button found")
	}
	return nil
}

// waitForLogin polls until a login cookie appears, giving the user time to
// complete captcha or SMS verification in the open window.
func (m *Manager) waitForLogin(ctx context.Context, timeout time.Duration) error {
	deadline := time.After(timeout)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return fmt.Errorf("timed out after %s", timeout)
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cookies, err := extractCookies(ctx)
			if err != nil {
				continue
			}
			for _, c := range cookies {
				if isLoginCookie(c.Name) && c.Value != "" {
					return nil
				}
			}
		}
	}
}

// extractCookies gets all cookies from the browser.
func extractCookies(ctx context.Context) ([]*network.Cookie, error) {
	var cookies []*network.Cookie
	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(ctx)
			return err
		}),
	)
	return cookies, err
}
