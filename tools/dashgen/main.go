package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jdevries/crosslister/tools/dashgen/dashboards"
	"github.com/jdevries/crosslister/tools/dashgen/rules"
)

func main() {
	validateOnly := flag.Bool("validate", false, "build generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, validateOnly bool) error {
	var artifacts []artifact

	if cfg.DashboardEnabled {
		dash, err := dashboards.BuildOverview().Build()
		if err != nil {
			return fmt.Errorf("building overview dashboard: %w", err)
		}
		data, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding overview dashboard: %w", err)
		}
		artifacts = append(artifacts, artifact{
			path: filepath.Join(cfg.OutputDir, "grafana", "data", "crosslister-overview.json"),
			data: data,
		})
	}

	if cfg.RulesEnabled {
		for name, cr := range map[string]any{
			"crosslister-recording-rules.yaml": rules.RecordingRules(),
			"crosslister-alerts.yaml":          rules.AlertRules(),
		} {
			data, err := yaml.Marshal(cr)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", name, err)
			}
			artifacts = append(artifacts, artifact{
				path: filepath.Join(cfg.OutputDir, "prometheus", name),
				data: data,
			})
		}
	}

	if validateOnly {
		fmt.Printf("validation passed (%d artifacts)\n", len(artifacts))
		return nil
	}

	for _, a := range artifacts {
		if err := os.MkdirAll(filepath.Dir(a.path), 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(a.path), err)
		}
		if err := os.WriteFile(a.path, a.data, 0o644); err != nil { //nolint:gosec // generated config
			return fmt.Errorf("writing %s: %w", a.path, err)
		}
		fmt.Printf("wrote %s\n", a.path)
	}
	return nil
}

type artifact struct {
	path string
	data []byte
}
