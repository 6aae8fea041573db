package polib

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bigabdoul/polib/po"
)

// Watch keeps the registry in sync with catalog files on disk until
// ctx is cancelled. Filesystem notifications and, when PollInterval is
// set, a modification-time poller both feed one bounded event channel;
// a single consumer goroutine re-parses the changed file and swaps its
// catalog set atomically. A burst of events beyond the channel's
// capacity drops duplicates rather than blocking the producers.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(r.opts.Directory); err != nil {
		watcher.Close()
		return err
	}

	changed := make(chan string, 64)

	offer := func(path string) {
		select {
		case changed <- path:
		default:
			// Channel full: the pending reloads already cover this
			// burst.
		}
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if !strings.HasSuffix(strings.ToLower(ev.Name), ".po") {
					continue
				}
				offer(ev.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.log.WithError(err).Warn("catalog watcher error")
			}
		}
	}()

	if r.opts.PollInterval > 0 {
		go func() {
			ticker := time.NewTicker(r.opts.PollInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					r.pollDrift(offer)
				}
			}
		}()
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-changed:
				r.reloadFile(path)
			}
		}
	}()

	return nil
}

// pollDrift offers every loaded catalog whose file changed on disk
// since it was read. Catches editors and network filesystems that
// escape inotify.
func (r *Registry) pollDrift(offer func(string)) {
	for _, set := range *r.sets.Load() {
		for _, cat := range set.Catalogs {
			if cat.FileName == "" {
				continue
			}
			if modifiedSince(cat.FileName, cat.LastAccessTime) {
				offer(cat.FileName)
			}
		}
	}
}

func modifiedSince(path string, since time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.ModTime().After(since)
}

// reloadFile replaces the single catalog originating from path with a
// freshly parsed one. The containing set is rebuilt and swapped by
// reference; readers never see a partially populated catalog.
func (r *Registry) reloadFile(path string) {
	id := po.FileID(path)

	var owner *CatalogSet
	index := -1
	for _, set := range *r.sets.Load() {
		for i, cat := range set.Catalogs {
			if cat.FileID == id {
				owner, index = set, i
				break
			}
		}
		if owner != nil {
			break
		}
	}
	if owner == nil {
		return // not a file this registry loaded
	}

	cat, err := po.ReadFile(path, r.readOptions(owner.Locale))
	if err != nil {
		r.log.WithError(err).WithField("file", path).
			Warn("keeping previous catalog; reload failed")
		return
	}

	catalogs := append([]*po.Catalog(nil), owner.Catalogs...)
	catalogs[index] = cat
	r.swapSet(&CatalogSet{Locale: owner.Locale, Catalogs: catalogs})
	r.log.WithField("file", path).Debug("catalog reloaded")
}
