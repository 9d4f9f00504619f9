// Package config in cmd provides a thin wrapper around the shared
// configuration loader found in pkg/config, scoped for the chaind and
// intrinsic-lint command line tools.
package config

import (
	pkgconfig "github.com/infrabridge/chaincore/pkg/config"
)

// AppConfig holds the currently loaded configuration for command line
// utilities.
var AppConfig pkgconfig.Config

// LoadConfig loads the configuration for the given environment name and
// stores it in AppConfig. Any errors during loading cause a panic, which
// is acceptable for command line initialisation where failure should
// abort execution.
func LoadConfig(env string) {
	cfg, err := pkgconfig.Load(env)
	if err != nil {
		panic(err)
	}
	AppConfig = *cfg
}
