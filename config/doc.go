// Package config loads process-wide validation defaults from environment
// variables, optionally seeded from a .env file.
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	govalid.Configure(cfg)
//
// Recognized variables:
//
//	GOVALID_LANG                      default message language (en)
//	GOVALID_SUPPRESS_WARNING          do not log failed validations (false)
//	GOVALID_SUPPRESS_VALIDATOR_ERROR  do not report validator panics (false)
//	GOVALID_LOG_LEVEL                 logrus level (warning)
package config
