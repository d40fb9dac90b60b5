package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ValidationFailures returns a timeseries panel showing listings rejected
// during preparation, per platform.
func ValidationFailures() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Validation Failures").
		Description("Listings rejected during preparation, per platform").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`crosslister:validation_failures:rate5m`,
			"{{platform}}", "A",
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

// MissingCredentials returns a timeseries panel showing skipped posts due
// to absent credentials.
func MissingCredentials() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Missing Credentials").
		Description("Posts skipped because a platform has no credentials").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`crosslister:missing_credentials:rate5m`,
			"{{platform}}", "A",
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
