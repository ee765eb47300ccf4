package cmd

import (
	"github.com/dmkrr/dupfind/pkg/config"
	"github.com/dmkrr/dupfind/pkg/logger"
)

var (
	// Global flags, bound by the root command.
	FlagConfigFile string
	FlagLogFile    string
	FlagLogLevel   = 0

	// Global vars
	cfg         *config.Config
	initialized bool
)

// initCore bootstraps logging and configuration. Commands call it once at
// the start of their Run.
func initCore() {
	if initialized {
		return
	}

	logger.Init(FlagLogLevel, FlagLogFile)

	log := logger.GetLogger("core")

	c, err := config.Load(FlagConfigFile)
	if err != nil {
		log.WithError(err).Fatal("Failed loading configuration")
	}
	cfg = c

	initialized = true
}
