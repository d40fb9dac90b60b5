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

// Facebook posts listings on Facebook Marketplace.
type Facebook struct {
	base
}

func newFacebook(creds domain.Credentials, cookiesDir string) *Facebook {
	return &Facebook{base: base{
		platform:   domain.PlatformFacebook,
		baseURL:    siteURL("CROSSLISTER_FACEBOOK_URL", "https://www.facebook.com"),
		creds:      creds,
		cookiesDir: cookiesDir,
	}}
}

func (p *Facebook) Login(ctx context.Context) error {
	slog.Info("logging in", "platform", p.platform)
	return chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/login"),
		typeWithDelay("#email", p.creds.Username),
		typeWithDelay("#pass", p.creds.Password),
		chromedp.Click(`[name='login']`, chromedp.ByQuery),
		chromedp.Sleep(6*time.Second),
	)
}

func (p *Facebook) VerifyLogin(ctx context.Context) (bool, error) {
	err := chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/marketplace/you/selling"),
		chromedp.Sleep(4*time.Second),
	)
	if err != nil {
		return false, err
	}
	return strings.Contains(currentURL(ctx), "selling"), nil
}

func (p *Facebook) PostListing(ctx context.Context, payload *domain.Payload) (string, error) {
	if err := p.ensureAuthenticated(ctx, p); err != nil {
		return "", err
	}
	slog.Info("creating listing", "platform", p.platform, "title", payload.GetString("title"))

	err := chromedp.Run(ctx,
		chromedp.Navigate(p.baseURL+"/marketplace/create/item"),
		clickIfPresent(`div[aria-label='Close']`, 3*time.Second),
		chromedp.Sleep(4*time.Second),
		uploadImages(`input[type='file'][accept*='image']`, payload.Images()),
		typeWithDelay(`input[aria-label='Title']`, payload.GetString("title")),
		typeWithDelay(`input[aria-label='Price']`, payload.GetString("price")),
		typeWithDelay(`textarea[aria-label='Description']`, payload.GetString("description")),
		chromedp.Click(`[aria-label='Condition']`, chromedp.ByQuery),
		chromedp.Click(
			fmt.Sprintf(`//span[text()='%s']`, payload.GetString("condition")),
			chromedp.BySearch,
		),
		chromedp.Click(`[aria-label='Category']`, chromedp.ByQuery),
		typeWithDelay(`input[aria-label='Search for category']`, payload.GetString("category")),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(`(//div[@role='option'])[1]`, chromedp.BySearch),
	)
	if err != nil {
		return "", fmt.Errorf("filling listing form: %w", err)
	}

	err = chromedp.Run(ctx,
		typeWithDelay(`input[aria-label='Location']`, payload.GetString("location_display")),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(`(//ul[contains(@role,'listbox')]//li)[1]`, chromedp.BySearch),
		chromedp.Click(`//div[@aria-label='Next']/ancestor::div[@role='button']`, chromedp.BySearch),
		chromedp.Sleep(4*time.Second),
		chromedp.Click(`//div[@aria-label='Publish']/ancestor::div[@role='button']`, chromedp.BySearch),
		chromedp.Sleep(6*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("publishing listing: %w", err)
	}

	return p.confirm(ctx, payload.GetString("title")), nil
}

// confirm waits for the live-listing banner, then checks the listing shows
// up under the seller's items. Facebook has no stable per-listing URL on the
// confirmation page, so the selling overview URL is returned.
func (p *Facebook) confirm(ctx context.Context, title string) string {
	short, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := chromedp.Run(short,
		chromedp.WaitVisible(`//span[contains(., 'Your listing is now live')]`, chromedp.BySearch),
		chromedp.Navigate(p.baseURL+"/marketplace/you/selling"),
		chromedp.WaitVisible(fmt.Sprintf(`//span[contains(., '%s')]`, title), chromedp.BySearch),
	)
	if err != nil {
		slog.Warn("unable to confirm listing", "platform", p.platform, "title", title)
	}
	return currentURL(ctx)
}
