package config

import (
	"os"
	"path/filepath"
)

// FindEnvFile returns the path of filename in the working directory or the
// nearest parent that has it, so Load finds the repository .env when a
// binary or test runs from a subdirectory such as cmd/server. An empty
// filename means .env. It returns os.ErrNotExist when no directory up to the
// root has the file.
func FindEnvFile(filename string) (string, error) {
	if filename == "" {
		filename = ".env"
	}
	startDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	curr := startDir
	for {
		candidate := filepath.Join(curr, filename)
		if _, err = os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(curr)
		if parent == curr {
			break
		}
		curr = parent
	}
	return "", os.ErrNotExist
}
