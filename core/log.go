package core

import "github.com/sirupsen/logrus"

// log is the package-level structured logger. cmd/chaind configures its
// level once at process start from pkg/config; no file in core writes to it.
var log = logrus.New()

// SetLogLevel lets the entrypoint apply the configured logging level.
func SetLogLevel(level logrus.Level) { log.SetLevel(level) }
