package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// storedCookie is the on-disk cookie representation. Only the fields needed
// to restore a session are kept.
type storedCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	Secure   bool    `json:"secure"`
	HTTPOnly bool    `json:"http_only"`
}

// CookiePath returns the cookie file location for a domain URL.
func CookiePath(dir, domain string) string {
	sanitized := strings.NewReplacer("https://", "", "http://", "", "/", "_").Replace(domain)
	return filepath.Join(dir, sanitized+".cookies.json")
}

// HasCookies reports whether a cookie file exists for the domain.
func HasCookies(dir, domain string) bool {
	_, err := os.Stat(CookiePath(dir, domain))
	return err == nil
}

// SaveCookies captures the tab's cookies and writes them to the domain's
// cookie file.
func SaveCookies(dir, domain string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return fmt.Errorf("reading browser cookies: %w", err)
		}

		stored := make([]storedCookie, 0, len(cookies))
		for _, c := range cookies {
			stored = append(stored, storedCookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
			})
		}

		data, err := json.MarshalIndent(stored, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding cookies: %w", err)
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating cookies dir: %w", err)
		}
		path := CookiePath(dir, domain)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing cookies file: %w", err)
		}
		slog.Info("saved cookies", "domain", domain, "count", len(stored), "path", path)
		return nil
	}
}

// LoadCookies reads the domain's cookie file and installs the cookies into
// the tab. Individual cookies that fail to install are skipped.
func LoadCookies(dir, domain string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		data, err := os.ReadFile(CookiePath(dir, domain)) //nolint:gosec // path derived from config
		if err != nil {
			return fmt.Errorf("reading cookies file: %w", err)
		}
		var stored []storedCookie
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("decoding cookies file: %w", err)
		}

		for _, c := range stored {
			param := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly)
			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				param = param.WithExpires(&expires)
			}
			if err := param.Do(ctx); err != nil {
				slog.Debug("skipping cookie", "name", c.Name, "error", err)
			}
		}
		slog.Info("loaded cookies", "domain", domain, "count", len(stored))
		return nil
	}
}
