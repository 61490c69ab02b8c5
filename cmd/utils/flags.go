package utils

import (
	"os"
	"path/filepath"
)

var (
	Home   string
	Config string
)

func GetHome() string {
	if Home != "" {
		return Home
	}

	home := os.Getenv("INCENTIVESHOME")

	if home != "" {
		return home
	}

	return os.ExpandEnv(filepath.Join("$HOME", ".incentives"))
}

func GetConfigPath() string {
	if Config != "" {
		return Config
	}

	return filepath.Join(GetHome(), "config", "config.toml")
}
