package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file (if present) into the process
// environment, the same optional best-effort way the teacher's own
// startup path wires godotenv in: a missing file is not an error, a
// malformed one is.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// EnvOrDefault reads an environment variable, falling back to def when
// unset or empty.
func EnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
