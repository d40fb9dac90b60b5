package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	colorGreen  = 0x2ECC71 // all posts succeeded
	colorYellow = 0xF1C40F // partial failures
	colorRed    = 0xE74C3C // nothing succeeded
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendRunSummary sends one posting run summary as a Discord embed.
func (d *DiscordNotifier) SendRunSummary(ctx context.Context, summary *RunSummary) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(summary)},
	}
	return d.post(ctx, payload)
}

func buildEmbed(summary *RunSummary) discordEmbed {
	embed := discordEmbed{
		Title: fmt.Sprintf("Posting run %s finished", summary.RunID),
		Color: summaryColor(summary),
		Fields: []discordEmbedField{
			{Name: "Listings", Value: fmt.Sprintf("%d", summary.Listings), Inline: true},
			{Name: "Posted", Value: fmt.Sprintf("%d", summary.Successes), Inline: true},
			{Name: "Failed", Value: fmt.Sprintf("%d", summary.Failures), Inline: true},
			{Name: "Duration", Value: summary.Duration.Round(time.Second).String(), Inline: true},
		},
	}

	if len(summary.PostedURLs) > 0 {
		// Discord truncates long descriptions, keep the newest five.
		urls := summary.PostedURLs
		if len(urls) > 5 {
			urls = urls[len(urls)-5:]
		}
		embed.Description = strings.Join(urls, "\n")
	}

	return embed
}

func summaryColor(summary *RunSummary) int {
	switch {
	case summary.Failures == 0:
		return colorGreen
	case summary.Successes > 0:
		return colorYellow
	default:
		return colorRed
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
