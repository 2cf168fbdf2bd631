package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// EnsureUserConfig makes sure a config file exists under dataDir,
// seeding it from defaultPath when one is shipped, or from the built-in
// defaults otherwise.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if defaultPath != "" {
		if src, err := os.Open(defaultPath); err == nil {
			defer src.Close()

			dst, err := os.Create(userPath)
			if err != nil {
				return "", err
			}
			defer dst.Close()

			if _, err := io.Copy(dst, src); err != nil {
				return "", err
			}
			return userPath, nil
		}
	}

	if err := saveRaw(userPath, Default()); err != nil {
		return "", err
	}
	return userPath, nil
}
