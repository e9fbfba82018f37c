package storage

// Store is the persistence contract the core depends on: a flat string
// key-value table. Values are JSON documents; key conventions live in
// sidetable.go.
type Store interface {
	// Get returns the value for key, reporting whether it exists.
	Get(key string) (string, bool, error)
	// Update writes value under key, replacing any previous value.
	Update(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys returns every stored key beginning with prefix.
	Keys(prefix string) ([]string, error)
	Close() error
}
