package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/blackwell-systems/pkgensure/internal/ensure"
)

// fakeHost stands in for a machine: list commands report "<pkg> not
// installed" until an install script for that package has run.
type fakeHost struct {
	mu        sync.Mutex
	installed map[string]bool
	scripts   []ensure.Command
	failing   map[string]int // package -> install exit code

	// beforeInstall, if set, runs ahead of each install script, outside the
	// lock, so a test can hold an install open.
	beforeInstall func(pkg string)
}

func newFakeHost() *fakeHost {
	return &fakeHost{installed: map[string]bool{}, failing: map[string]int{}}
}

// Run treats "list <pkg>" as a list command and anything else as an install
// script whose first line is "install <pkg>".
func (h *fakeHost) Run(ctx context.Context, c ensure.Command) (*ensure.Output, error) {
	if h.beforeInstall != nil && !strings.HasPrefix(c.Script, "list ") {
		first, _, _ := strings.Cut(c.Script, "\n")
		h.beforeInstall(strings.TrimPrefix(first, "install "))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if pkg, ok := strings.CutPrefix(c.Script, "list "); ok {
		if h.installed[pkg] {
			return &ensure.Output{Combined: pkg + " 1.0\n"}, nil
		}
		return &ensure.Output{Combined: pkg + " not installed\n"}, nil
	}

	h.scripts = append(h.scripts, c)
	first, _, _ := strings.Cut(c.Script, "\n")
	pkg := strings.TrimPrefix(first, "install ")
	if code, ok := h.failing[pkg]; ok {
		return &ensure.Output{Combined: "install blew up\n", ExitCode: code}, nil
	}
	h.installed[pkg] = true
	return &ensure.Output{Combined: "installed " + pkg + "\n"}, nil
}

func (h *fakeHost) installCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.scripts)
}

const twoPackageRecipe = `
[[check]]
package = "alpha"
list_command = "list alpha"
install = ["install alpha", "echo done"]
user = ""
cwd = "/tmp"

[[check]]
package = "beta"
list_command = "list beta"
install = ["install beta"]
`

// setupApp points the global flags at a temp recipe and database and swaps
// in host as the runner. Everything is restored on cleanup.
func setupApp(t *testing.T, recipe string, host ensure.Runner) (recipeFile, db string) {
	t.Helper()

	dir := t.TempDir()
	recipeFile = filepath.Join(dir, "recipe.toml")
	if err := os.WriteFile(recipeFile, []byte(recipe), 0644); err != nil {
		t.Fatalf("failed to write recipe: %v", err)
	}
	db = filepath.Join(dir, "history.db")

	oldRecipe, oldDB, oldVerbose, oldNoHistory, oldRunner := recipePath, dbPath, verbose, noHistory, newRunner
	recipePath = recipeFile
	dbPath = db
	verbose = false
	noHistory = false
	newRunner = func() ensure.Runner { return host }

	t.Cleanup(func() {
		recipePath, dbPath, verbose, noHistory, newRunner = oldRecipe, oldDB, oldVerbose, oldNoHistory, oldRunner
	})

	return recipeFile, db
}

// safeBuffer is a bytes.Buffer safe for the concurrent writes a running
// watch command makes while a test reads it.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
