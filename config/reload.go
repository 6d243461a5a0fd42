package config

// Reloader re-reads a TOML file and swaps the result into a Store. The
// file watcher calls Reload on every debounced change; a failed reload
// leaves the previous value in place.
type Reloader[T any] struct {
	store    *Store[T]
	filePath string
	defaults *T
}

// NewReloader creates a reloader that fills missing keys from defaults.
func NewReloader[T any](store *Store[T], filePath string, defaults *T) *Reloader[T] {
	return &Reloader[T]{
		store:    store,
		filePath: filePath,
		defaults: defaults,
	}
}

// Path returns the file the reloader reads.
func (r *Reloader[T]) Path() string { return r.filePath }

// Reload loads the file and swaps it into the store.
func (r *Reloader[T]) Reload() error {
	cfg, err := LoadTOML[T](r.filePath, r.defaults)
	if err != nil {
		return err
	}
	r.store.Swap(cfg)
	return nil
}
