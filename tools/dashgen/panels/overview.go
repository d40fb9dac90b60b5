package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/gauge"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// UptimeStat returns a stat panel showing process uptime in watch mode.
func UptimeStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Uptime").
		Description("Time since process start").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`time() - process_start_time_seconds{job="crosslister"}`,
			"", "A",
		)).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}

// RunsStat returns a stat panel showing posting runs over the last day.
func RunsStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Runs (24h)").
		Description("Posting runs completed in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`increase(crosslister_runs_total[24h])`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// ListingsLoadedStat returns a stat panel showing listings loaded over the
// last day.
func ListingsLoadedStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Listings Loaded (24h)").
		Description("Listings read from the CSV in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`increase(crosslister_listings_loaded_total[24h])`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// SuccessRateGauge returns a gauge panel showing the posting success rate
// over the last day.
func SuccessRateGauge() *gauge.PanelBuilder {
	expr := `sum(increase(crosslister_post_attempts_total{outcome="success"}[24h]))` +
		` / sum(increase(crosslister_post_attempts_total[24h])) * 100`
	return gauge.NewPanelBuilder().
		Title("Success Rate %").
		Description("Successful posts as a percentage of attempts (24h)").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(expr, "", "A")).
		Unit("percent").
		Min(0).
		Max(100).
		Thresholds(ThresholdsRedYellowGreen(50, 90)).
		ColorScheme(ColorSchemeThresholds())
}
