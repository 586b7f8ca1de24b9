package config

import "go.uber.org/fx"

// Module provides *Config, loaded from pgmigrate.yaml (or $PGMIGRATE_CONFIG)
// and the environment. Commands that run before a project exists, like init,
// receive the defaults.
var Module = fx.Module("config", fx.Provide(Load))
