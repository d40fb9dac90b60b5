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

// Marktplaats posts listings on marktplaats.nl.
type Marktplaats struct {
	base
}

func newMarktplaats(creds domain.Credentials, cookiesDir string) *Marktplaats {
	return &Marktplaats{base: base{
		platform:   domain.PlatformMarktplaats,
		baseURL:    siteURL("CROSSLISTER_MARKTPLAATS_URL", "https://www.marktplaats.nl"),
		creds:      creds,
		cookiesDir: cookiesDir,
	}}
}

func (p *Marktplaats) Login(ctx context.Context) error {
	slog.Info("logging in", "platform", p.platform)
	return chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/login"),
		typeWithDelay("#email", p.creds.Username),
		typeWithDelay("#password", p.creds.Password),
		chromedp.Click(`button[type='submit']`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
	)
}

func (p *Marktplaats) VerifyLogin(ctx context.Context) (bool, error) {
	err := chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/mijn-marktplaats"),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return false, err
	}
	return strings.Contains(currentURL(ctx), "mijn-marktplaats"), nil
}

func (p *Marktplaats) PostListing(ctx context.Context, payload *domain.Payload) (string, error) {
	if err := p.ensureAuthenticated(ctx, p); err != nil {
		return "", err
	}
	slog.Info("creating listing", "platform", p.platform, "title", payload.GetString("title"))

	err := chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/plaatsadvertentie"),
		clickIfPresent(`button[aria-label='Akkoord']`, 5*time.Second),
		chromedp.Sleep(2*time.Second),
		typeWithDelay(`[name='title']`, payload.GetString("title")),
	)
	if err != nil {
		return "", fmt.Errorf("filling title: %w", err)
	}

	p.selectCategory(ctx, payload.GetString("category"))

	err = chromedp.Run(ctx,
		uploadImages(`input[type='file']`, payload.Images()),
		typeWithDelay(`[name='description']`, payload.GetString("description")),
		typeWithDelay(`[name='price']`, payload.GetString("price")),
		chromedp.Click(`[name='condition']`, chromedp.ByQuery),
		chromedp.Click(
			fmt.Sprintf(`//li[contains(@role, 'option') and contains(., '%s')]`, payload.GetString("condition")),
			chromedp.BySearch,
		),
		typeWithDelay(`[name='postalCode']`, payload.GetString("postal_code")),
	)
	if err != nil {
		return "", fmt.Errorf("filling listing form: %w", err)
	}

	if pickup, ok := payload.Shipping()["pickup"].(bool); ok && pickup {
		if err := chromedp.Run(ctx,
			chromedp.Click(`label[for='delivery-method-pickup']`, chromedp.ByQuery),
		); err != nil {
			return "", fmt.Errorf("selecting delivery method: %w", err)
		}
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

// selectCategory drives the category picker. Failures are logged and
// tolerated; the platform suggests a category from the title when none is
// picked.
func (p *Marktplaats) selectCategory(ctx context.Context, category string) {
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
		slog.Warn("unable to auto-select category", "platform", p.platform, "error", err)
	}
}
