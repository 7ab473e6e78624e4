package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pipeline"
)

// serveConfig is the TOML configuration file read by "serve" (and
// overridable by its flags). A config file lets a deployment pin its
// backend choices and default layout options without a long flag line.
type serveConfig struct {
	Addr string `toml:"addr"`

	Cache struct {
		Backend string `toml:"backend"` // "file", "redis", "none"
		Addr    string `toml:"addr"`    // redis address
	} `toml:"cache"`

	Session struct {
		Backend string `toml:"backend"` // "file", "mongo"
		URI     string `toml:"uri"`     // mongo URI
	} `toml:"session"`

	Webhook string `toml:"webhook"` // URL notified on async job completion, if set

	Layout struct {
		HorizontalGap    float64 `toml:"horizontal_gap"`
		VerticalGap      float64 `toml:"vertical_gap"`
		ContainerPadding float64 `toml:"container_padding"`
		Compact          bool    `toml:"compact"`
		Refine           bool    `toml:"refine"`
	} `toml:"layout"`
}

// defaultServeConfig mirrors pipeline.DefaultOptions and a single-instance,
// file-backed deployment.
func defaultServeConfig() serveConfig {
	var cfg serveConfig
	cfg.Addr = ":8080"
	cfg.Cache.Backend = "file"
	cfg.Session.Backend = "file"
	opts := pipeline.DefaultOptions()
	cfg.Layout.HorizontalGap = opts.HorizontalGap
	cfg.Layout.VerticalGap = opts.VerticalGap
	cfg.Layout.ContainerPadding = opts.ContainerPadding
	cfg.Layout.Compact = opts.Compact
	cfg.Layout.Refine = opts.Refine
	return cfg
}

// loadServeConfig reads a TOML config file over defaultServeConfig's
// values. A missing path is not an error: serve falls back to defaults.
func loadServeConfig(path string) (serveConfig, error) {
	cfg := defaultServeConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}

func (cfg serveConfig) pipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.HorizontalGap = cfg.Layout.HorizontalGap
	opts.VerticalGap = cfg.Layout.VerticalGap
	opts.ContainerPadding = cfg.Layout.ContainerPadding
	opts.Compact = cfg.Layout.Compact
	opts.Refine = cfg.Layout.Refine
	return opts
}
