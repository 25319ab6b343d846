package media

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 640, 360))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStoreWritesFileAndURL(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, "/media/", nil)
	require.NoError(t, err)

	asset, err := d.Store(context.Background(), strings.NewReader("fake video bytes"), "clip.mp4")
	require.NoError(t, err)
	assert.NotEmpty(t, asset.PublicID)
	assert.Equal(t, "/media/"+asset.PublicID+".mp4", asset.URL)

	data, err := os.ReadFile(filepath.Join(dir, asset.PublicID+".mp4"))
	require.NoError(t, err)
	assert.Equal(t, "fake video bytes", string(data))
}

func TestStoreImageGetsThumbnail(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, "/media", nil)
	require.NoError(t, err)

	asset, err := d.Store(context.Background(), bytes.NewReader(pngBytes(t)), "avatar.png")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, asset.PublicID+thumbSuffix))
	assert.NoError(t, err, "image upload should leave a thumbnail next to the original")
}

func TestDeleteRemovesAllVariants(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, "/media", nil)
	require.NoError(t, err)
	ctx := context.Background()

	asset, err := d.Store(ctx, bytes.NewReader(pngBytes(t)), "avatar.png")
	require.NoError(t, err)

	require.NoError(t, d.Delete(ctx, asset.PublicID))

	matches, err := filepath.Glob(filepath.Join(dir, asset.PublicID+"*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	d, err := NewDisk(t.TempDir(), "/media", nil)
	require.NoError(t, err)
	assert.NoError(t, d.Delete(context.Background(), "never-stored"))
	assert.NoError(t, d.Delete(context.Background(), ""))
}
