package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
)

// Cookie names the platform sets on a logged-in session. Presence of any of
// them is the login indicator.
var loginCookieNames = []string{"sessionid", "sid_tt", "uid_tt", "sessionid_sig", "sid_guard"}

// CookieStore persists session cookies between runs.
type CookieStore struct {
	path string
}

// StoredCookies is the on-disk cookie format.
type StoredCookies struct {
	Cookies    []*network.Cookie `json:"cookies"`
	CapturedAt time.Time         `json:"captured_at"`
}

// NewCookieStore creates a cookie store at the given path.
func NewCookieStore(path string) *CookieStore {
	return &CookieStore{path: path}
}

// Save persists cookies to disk.
func (cs *CookieStore) Save(cookies []*network.Cookie) error {
	if err := os.MkdirAll(filepath.Dir(cs.path), 0700); err != nil {
		return err
	}

	stored := StoredCookies{Cookies: cookies, CapturedAt: time.Now()}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cs.path, data, 0600)
}

// Load retrieves cookies from disk.
func (cs *CookieStore) Load() (*StoredCookies, error) {
	data, err := os.ReadFile(cs.path)
	if err != nil {
		return nil, err
	}

	var stored StoredCookies
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse cookie store %s: %w", cs.path, err)
	}
	return &stored, nil
}

// IsValid reports whether stored cookies exist and include a login cookie
// that has not expired.
func (cs *CookieStore) IsValid() bool {
	stored, err := cs.Load()
	if err != nil {
		return false
	}

	now := time.Now()
	for _, c := range stored.Cookies {
		if !isLoginCookie(c.Name) {
			continue
		}
		if c.Expires > 0 && time.Unix(int64(c.Expires), 0).Before(now) {
			continue
		}
		return true
	}
	return false
}

// Clear removes stored cookies.
func (cs *CookieStore) Clear() error {
	err := os.Remove(cs.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Cookies returns the stored cookies for injection into a browser session.
func (cs *CookieStore) Cookies() ([]*network.Cookie, error) {
	stored, err := cs.Load()
	if err != nil {
		return nil, err
	}
	return stored.Cookies, nil
}

// Header renders the stored cookies as a Cookie request-header value for
// plain HTTP calls against the platform APIs.
func (cs *CookieStore) Header() (string, error) {
	stored, err := cs.Load()
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, len(stored.Cookies))
	for _, c := range stored.Cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; "), nil
}

func isLoginCookie(name string) bool {
	for _, n := range loginCookieNames {
		if n == name {
			return true
		}
	}
	return false
}
