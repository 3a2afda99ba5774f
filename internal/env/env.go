package env

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads KEY=value files into the process environment. Variables already set are
// not overridden and missing files are skipped.
func Load(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// GetString returns the value of key, or fallback when it is unset.
func GetString(key, fallback string) string {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return val
}

// GetInt returns key as an int, or fallback when it is unset or not a number.
func GetInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	valInt, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return valInt
}

// GetBool returns key parsed by strconv.ParseBool, or fallback when unset or invalid.
func GetBool(key string, fallback bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	valBool, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return valBool
}
