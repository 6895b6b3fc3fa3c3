package config

import "github.com/joho/godotenv"

// LoadDotEnv reads a .env file and sets environment variables.
// Existing env vars are not overridden (env takes precedence).
// A missing file is returned as an error; callers may ignore it.
func LoadDotEnv(path string) error {
	return godotenv.Load(path)
}
