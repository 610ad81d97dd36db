package env

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file.
// It uses the ENV_PATH environment variable to determine the path to the .env file.
// A missing file is not an error: credentials may come from the real environment.
func LoadDotEnv(defaultPath string) error {
	var envPath string
	if os.Getenv("ENV_PATH") != "" {
		envPath = os.Getenv("ENV_PATH")
	} else {
		slog.Debug("ENV_PATH is not set, using default path", "defaultPath", defaultPath)
		envPath = defaultPath
	}

	err := godotenv.Load(envPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Skipping .env, file not found", "path", envPath)
			return nil
		}
		slog.Error("Failed to load environment variables", "path", envPath, "error", err)
		return err
	}

	return nil
}

// Lookup returns the trimmed value of key, or "" when unset.
func Lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
