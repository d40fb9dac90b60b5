package poster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// Vinted posts listings on vinted.nl.
type Vinted struct {
	base
}

func newVinted(creds domain.Credentials, cookiesDir string) *Vinted {
	return &Vinted{base: base{
		platform:   domain.PlatformVinted,
		baseURL:    siteURL("CROSSLISTER_VINTED_URL", "https://www.vinted.nl"),
		creds:      creds,
		cookiesDir: cookiesDir,
	}}
}

func (p *Vinted) Login(ctx context.Context) error {
	slog.Info("logging in", "platform", p.platform)
	return chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/member/login"),
		typeWithDelay(`[name='username']`, p.creds.Username),
		typeWithDelay(`[name='password']`, p.creds.Password),
		chromedp.Click(`button[type='submit']`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
	)
}

func (p *Vinted) VerifyLogin(ctx context.Context) (bool, error) {
	err := chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/member/items"),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return false, err
	}
	return strings.Contains(currentURL(ctx), "items"), nil
}

func (p *Vinted) PostListing(ctx context.Context, payload *domain.Payload) (string, error) {
	if err := p.ensureAuthenticated(ctx, p); err != nil {
		return "", err
	}
	slog.Info("creating listing", "platform", p.platform, "title", payload.GetString("title"))

	err := chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/items/new"),
		clickIfPresent(`button[data-testid='accept-privacy']`, 5*time.Second),
		chromedp.Sleep(3*time.Second),
		uploadImages(`input[type='file']`, payload.Images()),
		typeWithDelay(`[name='title']`, payload.GetString("title")),
		typeWithDelay(`[name='description']`, payload.GetString("description")),
	)
	if err != nil {
		return "", fmt.Errorf("filling listing form: %w", err)
	}

	// Brand and size are picked from autocomplete dropdowns.
	err = chromedp.Run(ctx,
		typeWithDelay(`input[name='brand']`, payload.GetString("brand")),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(`(//div[@role='option'])[1]`, chromedp.BySearch),
		typeWithDelay(`input[name='size']`, payload.GetString("size")),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(`(//div[@role='option'])[1]`, chromedp.BySearch),
	)
	if err != nil {
		return "", fmt.Errorf("selecting brand and size: %w", err)
	}

	err = chromedp.Run(ctx,
		chromedp.Click(`div[data-testid='condition-dropdown']`, chromedp.ByQuery),
		chromedp.Click(
			fmt.Sprintf(`//li[contains(@role, 'option') and contains(., '%s')]`, payload.GetString("condition")),
			chromedp.BySearch,
		),
		chromedp.Click(`div[data-testid='category-dropdown']`, chromedp.ByQuery),
		typeWithDelay(`input[placeholder='Zoeken']`, payload.GetString("category")),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(`(//div[@role='option'])[1]`, chromedp.BySearch),
		typeWithDelay(`[name='price']`, payload.GetString("price")),
	)
	if err != nil {
		return "", fmt.Errorf("filling listing details: %w", err)
	}

	err = chromedp.Run(ctx,
		chromedp.Click(`button[data-testid='submit-button']`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("publishing listing: %w", err)
	}

	return confirmationHref(ctx, `div[data-testid='success-banner']`, 30*time.Second), nil
}
