package storage

import (
	"errors"
	"io"
	"io/fs"
)

// ErrInvalidPath is returned for names that are absolute or escape the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// Object is an open blob.
type Object interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
	Stat() (fs.FileInfo, error)
}

// Storage is a slash-separated blob store. Missing objects yield errors
// matching fs.ErrNotExist.
type Storage interface {
	Open(name string) (Object, error)
	Stat(name string) (fs.FileInfo, error)
	Put(name string, r io.Reader) (int64, error)
	Exists(name string) (bool, error)
	Delete(name string) error
}
