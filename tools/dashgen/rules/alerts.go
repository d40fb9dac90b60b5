package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// crosslister watch mode monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "crosslister-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "crosslister-alerts",
					Rules: []Rule{
						{
							Alert: "CrosslisterDown",
							Expr:  `absent(up{job="crosslister"})`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Crosslister is down",
								"description": "The crosslister job has been absent for more than 5 minutes.",
							},
						},
						{
							Alert: "CrosslisterHighErrorRate",
							Expr:  `crosslister:post_errors:rate5m / crosslister:posts:rate5m > 0.5`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "More than half of posting attempts are failing",
								"description": "Post failures exceeded 50% of attempts over the last 10 minutes. Check for marketplace layout changes or expired sessions.",
							},
						},
						{
							Alert: "CrosslisterMissingCredentials",
							Expr:  `sum(increase(crosslister_missing_credentials_total[1h])) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Posts skipped due to missing credentials",
								"description": "At least one enabled platform has no credentials configured.",
							},
						},
						{
							Alert: "CrosslisterNoRuns",
							Expr:  `increase(crosslister_runs_total[2h]) == 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "No posting runs in the last two hours",
								"description": "Watch mode appears stalled; no run has completed within two hours.",
							},
						},
						{
							Alert: "CrosslisterSlowPosts",
							Expr:  `histogram_quantile(0.95, sum(rate(crosslister_post_duration_seconds_bucket[30m])) by (le)) > 300`,
							For:   "30m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Posting a single listing takes over five minutes",
								"description": "The p95 posting duration exceeded 300 seconds. The browser flow is likely stuck on a changed page.",
							},
						},
					},
				},
			},
		},
	}
}
