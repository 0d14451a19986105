package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	fileExt        = ".value"
	tempFilePrefix = ".tmp-"
)

// File stores one file per key inside a directory. Several processes may
// share the directory; each sees the others' writes through Watch.
type File struct {
	dir    string
	logger *slog.Logger

	mu  sync.Mutex
	own map[string]string // last value this instance wrote per key
}

// NewFile returns a File store rooted at dir, creating it if needed.
func NewFile(dir string, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{dir: dir, logger: logger, own: make(map[string]string)}, nil
}

func (f *File) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid storage key %q", key))
	}
	return filepath.Join(f.dir, key+fileExt), nil
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	p, err := f.path(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound(key)
		}
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), nil
}

// Set writes through a temporary file and a rename so readers never observe
// a partial value.
func (f *File) Set(_ context.Context, key, value string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, tempFilePrefix+key+"-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}

	f.mu.Lock()
	f.own[key] = value
	f.mu.Unlock()

	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.own[key] = ""
	f.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Watch reports writes to the directory that did not come from this
// instance. The channel is closed when ctx is done or the watcher fails.
func (f *File) Watch(ctx context.Context) (<-chan Change, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := w.Add(f.dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", f.dir, err)
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				c, ok := f.changeFor(ev)
				if !ok {
					continue
				}
				logChange(ctx, f.logger, DriverFile, c)
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.logger.WarnContext(ctx, "file storage watcher error", slog.String("error", err.Error()))
			}
		}
	}()
	return out, nil
}

// changeFor maps a filesystem event to a Change, dropping temporary files,
// unrelated files and this instance's own writes.
func (f *File) changeFor(ev fsnotify.Event) (Change, bool) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, tempFilePrefix) || !strings.HasSuffix(name, fileExt) {
		return Change{}, false
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return Change{}, false
	}
	key := strings.TrimSuffix(name, fileExt)

	c := Change{Key: key}
	data, err := os.ReadFile(ev.Name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Change{}, false
		}
		c.Deleted = true
	} else {
		c.Value = string(data)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if last, mine := f.own[key]; mine && last == c.Value {
		return Change{}, false
	}
	delete(f.own, key)
	return c, true
}
