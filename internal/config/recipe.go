package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/blackwell-systems/pkgensure/internal/ensure"
)

// BuiltinSource names the embedded recipe in Resolve results.
const BuiltinSource = "built-in"

//go:embed default.toml
var defaultRecipe []byte

// ErrInvalidRecipe wraps every validation failure reported by Parse.
var ErrInvalidRecipe = errors.New("invalid recipe")

// Recipe is an ordered set of install checks.
type Recipe struct {
	Checks []ensure.InstallCheck
}

type recipeFile struct {
	Check []checkEntry `toml:"check"`
}

type checkEntry struct {
	Package     string   `toml:"package"`
	ListCommand string   `toml:"list_command"`
	Install     []string `toml:"install"`
	User        string   `toml:"user"`
	Cwd         string   `toml:"cwd"`
	Shell       string   `toml:"shell"`
	Timeout     string   `toml:"timeout"`
}

// Parse decodes and validates recipe TOML. Unknown keys are rejected so a
// misspelt field does not silently drop, say, the user an install runs as.
func Parse(data []byte) (*Recipe, error) {
	var file recipeFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys: %s", ErrInvalidRecipe, strings.Join(keys, ", "))
	}

	if len(file.Check) == 0 {
		return nil, fmt.Errorf("%w: no [[check]] entries", ErrInvalidRecipe)
	}

	recipe := &Recipe{Checks: make([]ensure.InstallCheck, 0, len(file.Check))}
	seen := make(map[string]bool, len(file.Check))

	for i, entry := range file.Check {
		name := strings.TrimSpace(entry.Package)
		if name == "" {
			return nil, fmt.Errorf("%w: check %d: package is required", ErrInvalidRecipe, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate package %q", ErrInvalidRecipe, name)
		}
		seen[name] = true

		if strings.TrimSpace(entry.ListCommand) == "" {
			return nil, fmt.Errorf("%w: %s: list_command is required", ErrInvalidRecipe, name)
		}
		if len(entry.Install) == 0 {
			return nil, fmt.Errorf("%w: %s: at least one install command is required", ErrInvalidRecipe, name)
		}
		for j, line := range entry.Install {
			if strings.TrimSpace(line) == "" {
				return nil, fmt.Errorf("%w: %s: install command %d is empty", ErrInvalidRecipe, name, j+1)
			}
		}

		var timeout time.Duration
		if entry.Timeout != "" {
			timeout, err = time.ParseDuration(entry.Timeout)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: timeout: %v", ErrInvalidRecipe, name, err)
			}
			if timeout < 0 {
				return nil, fmt.Errorf("%w: %s: timeout must not be negative", ErrInvalidRecipe, name)
			}
		}

		recipe.Checks = append(recipe.Checks, ensure.InstallCheck{
			Package:         name,
			ListCommand:     entry.ListCommand,
			InstallCommands: entry.Install,
			User:            entry.User,
			Dir:             entry.Cwd,
			Shell:           entry.Shell,
			Timeout:         timeout,
		})
	}

	return recipe, nil
}

// Load reads and parses the recipe at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	recipe, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recipe, nil
}

// Default returns the built-in recipe.
func Default() (*Recipe, error) {
	return Parse(defaultRecipe)
}

// Resolve picks the recipe to use and reports where it came from.
// An explicit path must exist. Otherwise the recipe in the config directory
// is used if present, falling back to the built-in recipe.
func Resolve(path string) (*Recipe, string, error) {
	if path != "" {
		recipe, err := Load(path)
		return recipe, path, err
	}

	if defaultPath, err := DefaultRecipePath(); err == nil {
		if _, err := os.Stat(defaultPath); err == nil {
			recipe, err := Load(defaultPath)
			return recipe, defaultPath, err
		}
	}

	recipe, err := Default()
	return recipe, BuiltinSource, err
}

// Select returns the checks named in names, in recipe order. No names means
// every check.
func (r *Recipe) Select(names ...string) ([]ensure.InstallCheck, error) {
	if len(names) == 0 {
		return r.Checks, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var selected []ensure.InstallCheck
	for _, check := range r.Checks {
		if wanted[check.Package] {
			selected = append(selected, check)
			delete(wanted, check.Package)
		}
	}

	if len(wanted) > 0 {
		var unknown []string
		for _, n := range names {
			if wanted[n] {
				unknown = append(unknown, n)
			}
		}
		return nil, fmt.Errorf("no check for package(s): %s", strings.Join(unknown, ", "))
	}

	return selected, nil
}
