package app_dir

import (
	"os"
	"path/filepath"
	"runtime"
)

func GetAppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	appDir := filepath.Join(homeDir, ".aleph-compiler")
	if runtime.GOOS == "windows" {
		appDir = filepath.Join(homeDir, "AppData\\Local\\aleph-compiler")
	}

	return appDir, nil
}

// GetCacheDir returns the directory of the remote module cache,
// `ALEPH_CACHE_DIR` overrides the default `<app dir>/cache`.
func GetCacheDir() (string, error) {
	if dir := os.Getenv("ALEPH_CACHE_DIR"); dir != "" {
		return dir, nil
	}
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "cache"), nil
}
