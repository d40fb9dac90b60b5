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

// Tweedehands posts listings on 2dehands.be.
type Tweedehands struct {
	base
}

func newTweedehands(creds domain.Credentials, cookiesDir string) *Tweedehands {
	return &Tweedehands{base: base{
		platform:   domain.PlatformTweedehands,
		baseURL:    siteURL("CROSSLISTER_TWEEDEHANDS_URL", "https://www.2dehands.be"),
		creds:      creds,
		cookiesDir: cookiesDir,
	}}
}

func (p *Tweedehands) Login(ctx context.Context) error {
	slog.Info("logging in", "platform", p.platform)
	return chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/login"),
		typeWithDelay("#email", p.creds.Username),
		typeWithDelay("#password", p.creds.Password),
		chromedp.Click(`button[type='submit']`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
	)
}

func (p *Tweedehands) VerifyLogin(ctx context.Context) (bool, error) {
	err := chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/mijn-2dehands"),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return false, err
	}
	return strings.Contains(currentURL(ctx), "mijn-2dehands"), nil
}

func (p *Tweedehands) PostListing(ctx context.Context, payload *domain.Payload) (string, error) {
	if err := p.ensureAuthenticated(ctx, p); err != nil {
		return "", err
	}
	slog.Info("creating listing", "platform", p.platform, "title", payload.GetString("title"))

	err := chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/plaats-zoekertje"),
		clickIfPresent(`button[aria-label='Akkoord']`, 5*time.Second),
		chromedp.Sleep(2*time.Second),
		uploadImages(`input[type='file']`, payload.Images()),
		typeWithDelay(`[name='title']`, payload.GetString("title")),
		typeWithDelay(`[name='description']`, payload.GetString("description")),
		typeWithDelay(`[name='price']`, payload.GetString("price")),
	)
	if err != nil {
		return "", fmt.Errorf("filling listing form: %w", err)
	}

	p.selectCategory(ctx, payload.GetString("category"))

	err = chromedp.Run(ctx,
		chromedp.Click(`button[data-testid='condition-selector']`, chromedp.ByQuery),
		chromedp.Click(
			fmt.Sprintf(`//li[contains(@role, 'option') and contains(., '%s')]`, payload.GetString("condition")),
			chromedp.BySearch,
		),
		typeWithDelay(`[name='location']`, payload.GetString("location_display")),
		chromedp.Click(`button[data-testid='delivery-selector']`, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second),
		chromedp.Click(`//li[contains(., 'Ophalen')]`, chromedp.BySearch),
	)
	if err != nil {
		return "", fmt.Errorf("filling listing details: %w", err)
	}

	err = chromedp.Run(ctx,
		chromedp.Click(`button[type='submit'][data-testid='publish']`, chromedp.ByQuery),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("publishing listing: %w", err)
	}

	return confirmationHref(ctx, `[data-testid='listing-confirmation']`, 30*time.Second), nil
}

func (p *Tweedehands) selectCategory(ctx context.Context, category string) {
	if category == "" {
		return
	}
	err := chromedp.Run(ctx,
		chromedp.Click(`button[data-testid='category-selector']`, chromedp.ByQuery),
		typeWithDelay(`input[data-testid='category-search']`, category),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(`//li[@role='option'][1]`, chromedp.BySearch),
	)
	if err != nil {
		slog.Warn("unable to select category", "platform", p.platform, "error", err)
	}
}
