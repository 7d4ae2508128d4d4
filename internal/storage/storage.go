package storage

import "io"

// Storage is the content store holding uploaded image binaries and their
// previews. Implementations: LocalStorage (disk) and MinioStorage.
type Storage interface {
	// Save writes the object. objectName may contain a path prefix
	// (e.g. "previews/<name>").
	Save(objectName string, reader io.Reader, size int64, contentType string) error
	// Open returns a reader for the object.
	Open(objectName string) (io.ReadCloser, error)
	// Remove deletes the object. Removing an absent object is not an error.
	Remove(objectName string) error
	// Ping reports whether the backing store is reachable.
	Ping() error
}
