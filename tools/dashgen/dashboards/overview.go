// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/jdevries/crosslister/tools/dashgen/panels"
)

// BuildOverview constructs the Crosslister Overview dashboard with all
// metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Crosslister Overview").
		Uid("crosslister-overview").
		Tags([]string{"crosslister"}).
		Refresh("30s").
		Time("now-24h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.UptimeStat()).
		WithPanel(panels.RunsStat()).
		WithPanel(panels.ListingsLoadedStat()).
		WithPanel(panels.SuccessRateGauge()))

	// Row 2: Posting.
	b.WithRow(dashboard.NewRowBuilder("Posting").
		WithPanel(panels.PostRate()).
		WithPanel(panels.PostDurationPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Validation.
	b.WithRow(dashboard.NewRowBuilder("Validation").
		WithPanel(panels.ValidationFailures()).
		WithPanel(panels.MissingCredentials()))

	// Row 4: Runs.
	b.WithRow(dashboard.NewRowBuilder("Runs").
		WithPanel(panels.RunDuration()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
