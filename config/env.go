package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// An Environment is a different context in which edgemux operates.
type Environment string

const (
	Development Environment = "DEVELOPMENT"
	Production  Environment = "PRODUCTION"
	Staging     Environment = "STAGING"
	Testing     Environment = "TESTING"
)

func (e Environment) String() string { return string(e) }

// Valid reports whether e is a known Environment.
func (e Environment) Valid() bool {
	switch e {
	case Development, Production, Staging, Testing:
		return true
	default:
		return false
	}
}

func (e Environment) IsProduction() bool { return e == Production }

// EnvVarOrBool gets the environment variable for the provided key and
// returns whether it matches "true" or "false" (after lower casing it)
// or the default value.
func EnvVarOrBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}

// EnvVarOrDuration gets the environment variable for the provided key,
// parses it into a [time.Duration], or returns the default.
func EnvVarOrDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return d
}

// EnvVarOrEnv gets the environment variable for the provided key,
// casts it into an [Environment], or returns the provided default
// if key is not a valid [Environment].
func EnvVarOrEnv(key string, def Environment) Environment {
	val := os.Getenv(key)
	if val == "" {
		return def
	}

	env := Environment(strings.ToUpper(val))
	if !env.Valid() {
		return def
	}

	return env
}

// EnvVarOrFloat gets the environment variable for the provided key,
// parses it as a float64, or returns the provided default.
func EnvVarOrFloat(key string, def float64) float64 {
	val, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return val
}

// EnvVarOrInt gets the environment variable for the provided key,
// creates an int from the retrieved value, or returns the provided default
// if the value is not a valid int.
func EnvVarOrInt(key string, def int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return val
}

// EnvVarOrInt64 is EnvVarOrInt for int64 values.
func EnvVarOrInt64(key string, def int64) int64 {
	val, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return def
	}
	return val
}

// EnvVarOrString gets the environment variable for the provided key or the provided default string.
func EnvVarOrString(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}
