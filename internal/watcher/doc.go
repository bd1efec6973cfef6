// Package watcher re-applies a recipe whenever its file changes.
//
// The Watcher watches the directory holding the recipe (editors often
// replace files by rename, which a watch on the file itself would miss),
// filters events down to the recipe path, debounces bursts of writes, and
// then calls the supplied callback once.
//
// Key features:
//   - fsnotify-based change detection, no polling
//   - Debounced callbacks (500ms by default)
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
//
// Example usage:
//
//	w, err := watcher.New("/etc/pkgensure/recipe.toml", func() {
//		applyRecipe()
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
package watcher
