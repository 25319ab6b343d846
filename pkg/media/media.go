// Package media abstracts the host that stores uploaded files. Handlers only
// see the Host contract; the core auth and toggle subsystems never call it.
package media

import (
	"context"
	"io"
)

// Asset describes one stored file. Duration is zero when the host cannot
// determine it (e.g. plain images on the disk host).
type Asset struct {
	PublicID    string  `json:"publicId"`
	URL         string  `json:"url"`
	ContentType string  `json:"contentType"`
	Duration    float64 `json:"duration"`
}

// Host stores and deletes media files.
type Host interface {
	Store(ctx context.Context, src io.Reader, originalName string) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}
