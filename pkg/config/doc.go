// Package config loads typed configuration from the environment.
//
// Values come from process environment variables, optionally seeded from
// .env files via github.com/joho/godotenv, and are parsed into structs with
// github.com/caarlos0/env/v11 field tags:
//
//	type Config struct {
//		Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
//		DefaultDuration time.Duration `env:"TOAST_DEFAULT_DURATION" envDefault:"5s"`
//	}
//
//	cfg, err := config.Load[Config]()
//
// Variables already present in the environment always win over .env files.
package config
