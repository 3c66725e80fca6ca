// Package config loads application settings with viper from defaults, an
// optional lingocards.yaml, LINGOCARDS_* environment variables and bound
// command-line flags, then validates them with go-playground/validator.
package config
