package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Load parses the environment into a new T.
//
// The default .env file in the working directory is read once per process
// if it exists. Any files passed explicitly must exist; they are read on
// every call and never override variables that are already set.
func Load[T any](files ...string) (T, error) {
	defaultEnvLoaded.Do(func() {
		// Missing default .env is not an error.
		_ = godotenv.Load()
	})

	var zero T
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return zero, errors.Join(ErrEnvFile, err)
		}
	}

	cfg, err := env.ParseAs[T]()
	if err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure.
// Use it for configuration the process cannot start without.
func MustLoad[T any](files ...string) T {
	cfg, err := Load[T](files...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}
