// Package dataset gives access to the files of a segmentation dataset: the
// precomputed feature bundle and the reference annotations of each track.
//
// Files live in a [FileStore], either on local disk ([Local]) or in an S3
// compatible object store ([S3Store]). The layout is
//
//	features/<track>.msgpack    msgpack-encoded features.Bundle
//	references/<track>.jams     JAMS reference annotations
//
// A [Track] is the file context the runner reads ground truth from.
package dataset

import (
	"context"
	"io"
)

// FileStore holds the files of a dataset.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens a file. Missing files give an error wrapping
	// os.ErrNotExist. The caller closes the reader.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write replaces a file with everything written before Close. Nothing
	// is visible to readers until Close returns nil.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes a file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a file exists.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the sorted names of the files directly under dir.
	// A missing dir lists as empty.
	List(ctx context.Context, dir string) ([]string, error)
}

// Aborter is implemented by writers returned from FileStore.Write that can
// discard a pending write. After Abort the file is left as it was.
type Aborter interface {
	Abort()
}

// abort discards w if it supports it and closes it otherwise.
func abort(w io.WriteCloser) {
	if a, ok := w.(Aborter); ok {
		a.Abort()
		return
	}
	w.Close()
}
