// Package config loads pkgensure recipes.
//
// A recipe is a TOML file listing one or more install checks. When no recipe
// file exists, the built-in recipe for the PHP Text_LanguageDetect PEAR
// package is used.
package config

import (
	"os"
	"path/filepath"
)

// Dir returns the pkgensure config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/pkgensure if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "pkgensure"), nil
}

// DefaultRecipePath returns {Dir}/recipe.toml.
func DefaultRecipePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "recipe.toml"), nil
}
