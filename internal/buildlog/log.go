// Package buildlog provides the ambient logging wiring shared by every
// package in the SDK, following the same subsystem-logger convention as the
// wider btcsuite/lnd dependency tree: each package holds a package-level
// btclog.Logger that defaults to Disabled and can be swapped in by the host
// application via UseLogger.
package buildlog

import (
	"github.com/btcsuite/btclog"
)

// Backend is the shared backend used to spawn subsystem loggers. Host
// applications replace it once at startup before constructing any SDK
// component.
var Backend btclog.Logger = btclog.Disabled

// NewSubLogger returns the installed backend for a subsystem, or the
// disabled logger if none has been installed. The subsystem tag is carried
// by the backend the host application builds (btclog backends spawn one
// logger per tag); this helper only routes to it.
func NewSubLogger(subsystem string) btclog.Logger {
	if Backend == btclog.Disabled {
		return btclog.Disabled
	}
	return Backend
}

// UseLogger installs logger as the backend for every subsystem logger
// created afterwards. It does not retroactively affect loggers already
// handed out; callers should install the backend before constructing SDK
// components.
func UseLogger(logger btclog.Logger) {
	Backend = logger
}
