package govalid

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/reoring/govalid/config"
	"github.com/reoring/govalid/messages"
)

// baseline holds the options used when a validate call passes none.
var baseline atomic.Pointer[Options]

// Configure applies process-wide defaults: the default message language,
// the log level of the standard logrus logger, and the suppression flags
// used by calls made without Options.
func Configure(cfg config.Config) error {
	if cfg.LogLevel != "" {
		lvl, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("govalid: log level: %w", err)
		}
		logrus.SetLevel(lvl)
	}
	if cfg.Lang != "" {
		messages.SetLanguage(cfg.Lang)
	}
	baseline.Store(&Options{
		SuppressWarning:        cfg.SuppressWarning,
		SuppressValidatorError: cfg.SuppressValidatorError,
	})
	return nil
}

// ConfigureFromEnv loads config.Config from the environment and applies it.
func ConfigureFromEnv() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return Configure(cfg)
}
