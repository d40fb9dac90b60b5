package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummary(successes, failures int) *RunSummary {
	return &RunSummary{
		RunID:     "run-1",
		Listings:  3,
		Successes: successes,
		Failures:  failures,
		Duration:  95 * time.Second,
		PostedURLs: []string{
			"https://www.marktplaats.nl/a/123",
			"https://www.vinted.nl/items/456",
		},
	}
}

func TestDiscordNotifier_SendRunSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		summary    *RunSummary
		statusCode int
		wantErr    bool
		errMsg     string
		wantColor  int
	}{
		{
			name:       "all successes uses green",
			summary:    testSummary(6, 0),
			statusCode: http.StatusNoContent,
			wantColor:  colorGreen,
		},
		{
			name:       "partial failures uses yellow",
			summary:    testSummary(4, 2),
			statusCode: http.StatusNoContent,
			wantColor:  colorYellow,
		},
		{
			name:       "no successes uses red",
			summary:    testSummary(0, 6),
			statusCode: http.StatusNoContent,
			wantColor:  colorRed,
		},
		{
			name:       "discord returns 429 rate limited",
			summary:    testSummary(6, 0),
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			summary:    testSummary(6, 0),
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			n := NewDiscordNotifier(srv.URL, WithHTTPClient(srv.Client()))
			err := n.SendRunSummary(context.Background(), tt.summary)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.Len(t, received.Embeds, 1)
			embed := received.Embeds[0]
			assert.Equal(t, tt.wantColor, embed.Color)
			assert.Contains(t, embed.Title, "run-1")
			assert.Contains(t, embed.Description, "marktplaats.nl")
			require.Len(t, embed.Fields, 4)
			assert.Equal(t, "Posted", embed.Fields[1].Name)
		})
	}
}

func TestBuildEmbed_TruncatesURLs(t *testing.T) {
	t.Parallel()

	summary := testSummary(8, 0)
	summary.PostedURLs = []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"}

	embed := buildEmbed(summary)
	assert.Equal(t, "u3\nu4\nu5\nu6\nu7", embed.Description)
}
