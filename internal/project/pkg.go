package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// detectPackage reads package metadata from whichever manifest is present:
// package.json, Cargo.toml, then go.mod.
func detectPackage(dir string, files map[string]bool) *PackageInfo {
	if files["package.json"] {
		if info := packageFromJSON(filepath.Join(dir, "package.json")); info != nil {
			return info
		}
	}
	if files["Cargo.toml"] {
		if info := packageFromCargo(filepath.Join(dir, "Cargo.toml")); info != nil {
			return info
		}
	}
	if files["go.mod"] {
		if info := packageFromGoMod(filepath.Join(dir, "go.mod")); info != nil {
			return info
		}
	}
	return nil
}

func packageFromJSON(path string) *PackageInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var manifest struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil || manifest.Name == "" {
		return nil
	}
	return &PackageInfo{Name: manifest.Name, Version: manifest.Version}
}

// packageFromCargo scans the [package] section for name and version.
func packageFromCargo(path string) *PackageInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var info PackageInfo
	inPackage := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			inPackage = line == "[package]"
			continue
		}
		if !inPackage {
			continue
		}
		if v, found := strings.CutPrefix(line, "name"); found {
			info.Name = tomlString(v)
		} else if v, found := strings.CutPrefix(line, "version"); found {
			info.Version = tomlString(v)
		}
	}

	if info.Name == "" {
		return nil
	}
	return &info
}

// tomlString extracts the quoted value from `= "value"`.
func tomlString(rest string) string {
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "="))
	return strings.Trim(rest, `"`)
}

func packageFromGoMod(path string) *PackageInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	for _, line := range strings.Split(string(data), "\n") {
		if module, found := strings.CutPrefix(strings.TrimSpace(line), "module "); found {
			module = strings.TrimSpace(module)
			if module == "" {
				return nil
			}
			// go.mod carries no version; use the module's base name.
			return &PackageInfo{Name: filepath.Base(module)}
		}
	}
	return nil
}
