package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "crosslister-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "crosslister-recording",
					Rules: []Rule{
						{
							Record: "crosslister:posts:rate5m",
							Expr:   `sum(rate(crosslister_post_attempts_total[5m]))`,
						},
						{
							Record: "crosslister:post_errors:rate5m",
							Expr:   `sum(rate(crosslister_post_attempts_total{outcome="error"}[5m]))`,
						},
						{
							Record: "crosslister:validation_failures:rate5m",
							Expr:   `sum(rate(crosslister_validation_failures_total[5m])) by (platform)`,
						},
						{
							Record: "crosslister:missing_credentials:rate5m",
							Expr:   `sum(rate(crosslister_missing_credentials_total[5m])) by (platform)`,
						},
					},
				},
			},
		},
	}
}
