package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher backfills thumbnails for image files that appear in the media
// directory out-of-band (bulk imports, restored backups). Create events are
// debounced so half-written files are not picked up, then handed to a small
// worker pool.
type Watcher struct {
	disk    *Disk
	workers int
	log     *zap.Logger
}

func NewWatcher(disk *Disk, workers int, log *zap.Logger) *Watcher {
	if workers <= 0 {
		workers = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{disk: disk, workers: workers, log: log}
}

// Run watches until ctx is cancelled. It first scans for images that are
// already missing a thumbnail, then processes new arrivals.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.disk.BaseDir()); err != nil {
		return err
	}
	w.log.Info("watching media dir", zap.String("dir", w.disk.BaseDir()))

	fileCh := make(chan string, 256)
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				w.process(name)
			}
		}()
	}

	for _, name := range w.scanMissing() {
		fileCh <- name
	}

	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(fileCh)
			wg.Wait()
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				close(fileCh)
				wg.Wait()
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				name := filepath.Base(ev.Name)
				if wantsThumbnail(name) {
					pending[name] = time.Now()
				}
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					fileCh <- name
					delete(pending, name)
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				close(fileCh)
				wg.Wait()
				return nil
			}
			w.log.Warn("media watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) process(name string) {
	path := filepath.Join(w.disk.BaseDir(), name)
	publicID := strings.TrimSuffix(name, filepath.Ext(name))
	thumb := filepath.Join(w.disk.BaseDir(), publicID+thumbSuffix)
	if _, err := os.Stat(thumb); err == nil {
		return
	}
	if err := w.disk.makeThumbnail(path, publicID); err != nil {
		w.log.Warn("backfill thumbnail failed", zap.String("file", name), zap.Error(err))
		return
	}
	w.log.Info("thumbnail backfilled", zap.String("file", name))
}

func (w *Watcher) scanMissing() []string {
	entries, err := os.ReadDir(w.disk.BaseDir())
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !wantsThumbnail(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	return out
}

func wantsThumbnail(name string) bool {
	if strings.HasSuffix(name, thumbSuffix) {
		return false
	}
	return isImageExt(strings.ToLower(filepath.Ext(name)))
}
