package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Disk is a local-filesystem Host. Files are stored under baseDir with a
// random public id as filename and served under publicURL. Image uploads get
// a JPEG thumbnail variant next to the original.
type Disk struct {
	baseDir   string
	publicURL string
	log       *zap.Logger
}

func NewDisk(baseDir, publicURL string, log *zap.Logger) (*Disk, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Disk{
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}, nil
}

// BaseDir exposes the storage root, used by the thumbnail watcher.
func (d *Disk) BaseDir() string { return d.baseDir }

func (d *Disk) Store(ctx context.Context, src io.Reader, originalName string) (*Asset, error) {
	if src == nil {
		return nil, fmt.Errorf("store: no source")
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	publicID := uuid.NewString()
	name := publicID + ext
	path := filepath.Join(d.baseDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write media file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close media file: %w", err)
	}

	if isImageExt(ext) {
		if err := d.makeThumbnail(path, publicID); err != nil {
			// thumbnail is best-effort; the watcher retries later
			d.log.Warn("thumbnail generation failed",
				zap.String("file", name), zap.Error(err))
		}
	}

	return &Asset{
		PublicID:    publicID,
		URL:         d.publicURL + "/" + name,
		ContentType: mime.TypeByExtension(ext),
	}, nil
}

// Delete removes the stored file and any thumbnail variant for publicID.
func (d *Disk) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(d.baseDir, publicID+"*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", m, err)
		}
	}
	return nil
}

func (d *Disk) makeThumbnail(path, publicID string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	thumb := imaging.Fit(img, 480, 270, imaging.Lanczos)
	return imaging.Save(thumb, filepath.Join(d.baseDir, publicID+thumbSuffix))
}

const thumbSuffix = "_thumb.jpg"

func isImageExt(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
