package poster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jdevries/crosslister/internal/browser"
	domain "github.com/jdevries/crosslister/pkg/types"
)

const typeDelay = 100 * time.Millisecond

// siteURL returns the production marketplace URL unless an environment
// override is set. Overrides point posters at a local mock marketplace
// (tools/mock-marketplace) during development.
func siteURL(envKey, productionURL string) string {
	if override := os.Getenv(envKey); override != "" {
		return override
	}
	return productionURL
}

// base carries the state shared by every platform poster.
type base struct {
	platform   domain.Platform
	baseURL    string
	creds      domain.Credentials
	cookiesDir string
}

func (b *base) Platform() domain.Platform {
	return b.platform
}

// ensureAuthenticated restores the session from stored cookies when
// possible and falls back to an interactive login. A fresh login saves
// cookies for the next run.
func (b *base) ensureAuthenticated(ctx context.Context, p Poster) error {
	slog.Info("ensuring authenticated session", "platform", b.platform)

	if browser.HasCookies(b.cookiesDir, b.baseURL) {
		err := chromedp.Run(ctx,
			chromedp.Navigate(b.baseURL),
			browser.LoadCookies(b.cookiesDir, b.baseURL),
			chromedp.Navigate(b.baseURL),
		)
		if err == nil {
			ok, verifyErr := p.VerifyLogin(ctx)
			if verifyErr == nil && ok {
				slog.Info("session restored from cookies", "platform", b.platform)
				return nil
			}
			slog.Info("stored cookies invalid, logging in again", "platform", b.platform)
		} else {
			slog.Debug("cookie restore failed", "platform", b.platform, "error", err)
		}
	}

	if err := p.Login(ctx); err != nil {
		return fmt.Errorf("logging in to %s: %w", b.platform, err)
	}
	ok, err := p.VerifyLogin(ctx)
	if err != nil {
		return fmt.Errorf("verifying %s login: %w", b.platform, err)
	}
	if !ok {
		return fmt.Errorf("unable to verify login for %s", b.platform)
	}
	return chromedp.Run(ctx, browser.SaveCookies(b.cookiesDir, b.baseURL))
}

// typeWithDelay clears a field and types the value character by character,
// pacing keystrokes like a human would.
func typeWithDelay(sel, value string) chromedp.Tasks {
	tasks := chromedp.Tasks{
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.Clear(sel, chromedp.ByQuery),
	}
	for _, r := range value {
		tasks = append(tasks,
			chromedp.SendKeys(sel, string(r), chromedp.ByQuery),
			chromedp.Sleep(typeDelay),
		)
	}
	return tasks
}

// uploadImages attaches image files to a file input and waits for the
// platform to process each upload.
func uploadImages(sel string, images []string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.SetUploadFiles(sel, images, chromedp.ByQuery),
		chromedp.Sleep(time.Duration(len(images)) * 2 * time.Second),
	}
}

// clickIfPresent clicks an element when it shows up within the timeout and
// silently moves on otherwise. Used for cookie banners and onboarding
// modals that may or may not appear.
func clickIfPresent(sel string, timeout time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		short, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := chromedp.Run(short, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
			slog.Debug("optional element not found", "selector", sel)
		}
		return nil
	}
}

// currentURL reads the tab's location, returning "" on failure.
func currentURL(ctx context.Context) string {
	var url string
	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return ""
	}
	return url
}

// confirmationHref waits for a confirmation element and extracts the href of
// the link inside it. Falls back to the current URL when the confirmation
// never appears.
func confirmationHref(ctx context.Context, containerSel string, wait time.Duration) string {
	short, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	var href string
	var ok bool
	err := chromedp.Run(short,
		chromedp.WaitVisible(containerSel, chromedp.ByQuery),
		chromedp.AttributeValue(containerSel+" a", "href", &href, &ok, chromedp.ByQuery),
	)
	if err == nil && ok && href != "" {
		return href
	}
	slog.Warn("unable to capture confirmation URL, using current location")
	return currentURL(ctx)
}
