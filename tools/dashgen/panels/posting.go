package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PostRate returns a timeseries panel showing posting attempts per second
// broken down by platform and outcome.
func PostRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Post Attempts").
		Description("Posting attempts per second by platform and outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(crosslister_post_attempts_total[5m])) by (platform, outcome)`,
			"{{platform}}/{{outcome}}", "A",
		)).
		Unit("ops").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PostDurationPercentiles returns a timeseries panel showing p50 and p95
// posting durations.
func PostDurationPercentiles() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Post Duration").
		Description("Time to post one listing, per platform").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`histogram_quantile(0.50, sum(rate(crosslister_post_duration_seconds_bucket[5m])) by (le, platform))`,
			"p50 {{platform}}",
			"A",
		)).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(crosslister_post_duration_seconds_bucket[5m])) by (le, platform))`,
			"p95 {{platform}}",
			"B",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ErrorRate returns a timeseries panel showing failed posts as a percentage
// of all attempts.
func ErrorRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Error Rate %").
		Description("Failed posts as percentage of attempts").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`crosslister:post_errors:rate5m / crosslister:posts:rate5m * 100`,
			"error %", "A",
		)).
		Unit("percent").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(10, 50)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}
