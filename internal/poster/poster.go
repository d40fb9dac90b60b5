// Package poster implements the browser automation flows that create
// listings on each supported marketplace.
package poster

import (
	"context"
	"fmt"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// Poster drives one marketplace's listing flow inside a browser session.
// The context passed to each method must be a chromedp tab context.
type Poster interface {
	// Platform identifies the marketplace this poster serves.
	Platform() domain.Platform
	// Login performs the interactive login flow.
	Login(ctx context.Context) error
	// VerifyLogin reports whether the session is authenticated.
	VerifyLogin(ctx context.Context) (bool, error)
	// PostListing creates a listing from a prepared payload and returns
	// the resulting listing URL.
	PostListing(ctx context.Context, payload *domain.Payload) (string, error)
}

// New returns the poster for a platform.
func New(platform domain.Platform, creds domain.Credentials, cookiesDir string) (Poster, error) {
	switch platform {
	case domain.PlatformMarktplaats:
		return newMarktplaats(creds, cookiesDir), nil
	case domain.PlatformTweedehands:
		return newTweedehands(creds, cookiesDir), nil
	case domain.PlatformFacebook:
		return newFacebook(creds, cookiesDir), nil
	case domain.PlatformVinted:
		return newVinted(creds, cookiesDir), nil
	default:
		return nil, fmt.Errorf("no poster registered for platform %q", platform)
	}
}
