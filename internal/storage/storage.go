package storage

import (
	"context"
	"io"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

// Opener reads back an object previously returned by Upload.
type Opener interface {
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
}

// Store is a backend that can both persist and read résumé files.
type Store interface {
	Uploader
	Opener
}
