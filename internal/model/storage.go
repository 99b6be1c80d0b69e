package model

import (
	"context"
	"io"
)

// AvatarStore holds profile pictures in object storage.
type AvatarStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}
