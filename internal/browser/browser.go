// Package browser manages headless Chrome sessions for platform automation,
// including cookie persistence between runs.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// Config controls how a Chrome session is launched.
type Config struct {
	Headless     bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
	Timeout      time.Duration
	ExecPath     string
}

// Session wraps one Chrome tab context. Each posting attempt gets its own
// session so a crashed browser never poisons other platforms.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// NewSession launches Chrome and returns a ready session. Close must be
// called to release the browser.
func NewSession(parent context.Context, cfg Config) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-notifications", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	execPath := cfg.ExecPath
	if execPath == "" {
		execPath = findChromeBinary()
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	var cancels []context.CancelFunc

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	cancels = append(cancels, cancelAlloc)

	// Suppress chromedp log noise; slog carries our own messages.
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	cancels = append(cancels, cancelTab)

	if cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, cfg.Timeout)
		cancels = append(cancels, cancelTimeout)
	}

	// Start the browser eagerly so launch failures surface here instead of
	// in the middle of a posting flow.
	if err := chromedp.Run(tabCtx); err != nil {
		for i := len(cancels) - 1; i >= 0; i-- {
			cancels[i]()
		}
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	slog.Debug("chrome session started", "headless", cfg.Headless, "exec_path", execPath)
	return &Session{ctx: tabCtx, cancels: cancels}, nil
}

// Context returns the chromedp tab context for running actions.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Run executes chromedp actions on the session tab.
func (s *Session) Run(actions ...chromedp.Action) error {
	return chromedp.Run(s.ctx, actions...)
}

// Close shuts down the tab and the browser process.
func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

func findChromeBinary() string {
	for _, name := range []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
	} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
