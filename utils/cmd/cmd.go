package cmd

import (
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"

	"github.com/govlink/govlink/internal/config"
)

// Setup loads and validates the configuration, stamps the build version on it
// and installs the default logger. Every govlink command starts with it.
func Setup(buildInfo string, opts ...commoncfg.Option) (*config.Config, error) {
	setup := oops.In("setup")

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, setup.Wrapf(err, "loading configuration")
	}

	err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
	if err != nil {
		return nil, setup.Wrapf(err, "stamping build version %q", buildInfo)
	}

	err = logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return nil, setup.Wrapf(err, "installing default logger")
	}

	return cfg, nil
}
