package storage

import (
	"errors"
	"io"
	"io/fs"
)

var ErrNotFound = errors.New("record not found")

type Stat = fs.FileInfo

// Storage stores the remote module cache, keys are slash separated paths.
type Storage interface {
	Stat(key string) (Stat, error)
	Get(key string) (io.ReadCloser, Stat, error)
	// List returns the keys under the prefix in lexical order.
	List(prefix string) ([]string, error)
	// Put replaces the content of the key atomically.
	Put(key string, content io.Reader) error
	// DeleteAll removes the keys under the prefix and returns them.
	DeleteAll(prefix string) ([]string, error)
}
