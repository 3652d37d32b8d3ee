package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir     string
	DataDir     string
	LogFile     string
	PluginsDir  string
	PackagesDir string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		defaultPaths = &Paths{
			HomeDir:     homeDir,
			DataDir:     filepath.Join(homeDir, ".nosh"),
			LogFile:     filepath.Join(homeDir, ".nosh", "nosh.log"),
			PluginsDir:  filepath.Join(homeDir, ".nosh", "plugins"),
			PackagesDir: filepath.Join(homeDir, ".nosh", "packages"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func PluginsDir() string {
	ensureDefaultPaths()
	return defaultPaths.PluginsDir
}

func PackagesDir() string {
	ensureDefaultPaths()
	return defaultPaths.PackagesDir
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
