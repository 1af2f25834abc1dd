package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds process-wide defaults read from the environment.
type Config struct {
	// Lang selects the default message table (BCP 47 tag, e.g. "en", "zh-CN").
	Lang string `env:"GOVALID_LANG" envDefault:"en"`
	// SuppressWarning disables the warning logged for failed validations.
	SuppressWarning bool `env:"GOVALID_SUPPRESS_WARNING" envDefault:"false"`
	// SuppressValidatorError disables out-of-band reporting of validator panics.
	SuppressValidatorError bool `env:"GOVALID_SUPPRESS_VALIDATOR_ERROR" envDefault:"false"`
	// LogLevel is a logrus level name.
	LogLevel string `env:"GOVALID_LOG_LEVEL" envDefault:"warning"`
}

var dotenvLoaded sync.Once

// Load reads Config from the environment. A .env file in the working
// directory is loaded once per process when present; variables already set
// in the environment take precedence over it.
func Load() (Config, error) {
	dotenvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// LoadFile reads Config after loading the given env files. Unlike Load,
// missing files are reported as errors.
func LoadFile(paths ...string) (Config, error) {
	if err := godotenv.Load(paths...); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrEnvFile, err)
	}
	return Load()
}

// MustLoad works like Load but panics if the environment cannot be parsed.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("govalid: failed to load configuration: %v", err))
	}
	return cfg
}
