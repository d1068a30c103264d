package config

import (
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/samber/oops"

	"github.com/govlink/govlink/internal/constants"
)

// defaultConfig holds the defaults struct tags cannot express. Cost reports
// cover both GovCloud regions unless the deployment narrows them.
var defaultConfig = map[string]any{
	"Costs": map[string]any{
		"Regions": []string{"us-gov-west-1", "us-gov-east-1"},
	},
}

// LoadConfig reads config.yaml from the govlink search paths, lets GOVLINK_*
// environment variables override it and validates the result. Caller options
// are applied after the built-in ones and win over them.
func LoadConfig(opts ...commoncfg.Option) (*Config, error) {
	cfg := &Config{}

	err := commoncfg.NewLoader(cfg, append(baseOptions(), opts...)...).LoadConfig()
	if err != nil {
		return nil, oops.In("config").Wrapf(err, "failed to load config")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, oops.In("config").Wrapf(err, "failed to validate config")
	}

	return cfg, nil
}

func baseOptions() []commoncfg.Option {
	return []commoncfg.Option{
		commoncfg.WithDefaults(defaultConfig),
		commoncfg.WithPaths(constants.DefaultConfigPath1, constants.DefaultConfigPath2, "."),
		commoncfg.WithEnvOverride(constants.APIName),
	}
}
