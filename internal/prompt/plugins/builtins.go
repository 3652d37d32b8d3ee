package plugins

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// Built-in plugin definitions embedded in the binary and installed to the
// plugins directory on first run. Users can edit the installed copies;
// existing files are never overwritten.

//go:embed data/git.yaml
var gitPlugin []byte

//go:embed data/exec_time.yaml
var execTimePlugin []byte

//go:embed data/context.yaml
var contextPlugin []byte

// InstallBuiltins writes the built-in plugin definitions under
// <pluginsDir>/builtin, skipping files that already exist.
func InstallBuiltins(pluginsDir string) error {
	builtinDir := filepath.Join(pluginsDir, "builtin")
	if err := os.MkdirAll(builtinDir, 0755); err != nil {
		return fmt.Errorf("failed to create builtin plugins directory: %w", err)
	}

	files := map[string][]byte{
		"git.yaml":       gitPlugin,
		"exec_time.yaml": execTimePlugin,
		"context.yaml":   contextPlugin,
	}

	for name, content := range files {
		if err := installIfMissing(filepath.Join(builtinDir, name), content); err != nil {
			return err
		}
	}

	return nil
}

func installIfMissing(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to install %s: %w", filepath.Base(path), err)
	}
	return nil
}
