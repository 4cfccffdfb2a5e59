// Package settings exposes the GitHub authentication configuration as a typed,
// read-through view over a generic key-value store.
//
// Settings never caches values: every accessor re-reads the underlying Store,
// so configuration changes made at runtime take effect on the next call.
// Values missing from the store fall back to the defaults declared by
// Definitions.
//
// Three Store implementations are provided:
//   - MapStore: a mutable in-memory store, useful for tests and embedding
//   - FileStore: a YAML file, reloaded whenever its modification time changes
//   - LoadEnv: a snapshot of environment variables
//
// # Example Usage
//
//	store, err := settings.NewFileStore("/etc/sonar/github.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s := settings.New(store)
//	if s.IsEnabled() {
//	    // ...
//	}
package settings
