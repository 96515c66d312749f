package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
)

// FileStorage stores each item as <dir>/<key>.json. Writes go through a temp
// file and rename, and mutations hold an advisory lock on <dir>/.lock so
// several CLI processes can share one directory.
type FileStorage struct {
	Dir string
	// StrictPerms, when true, enforces 0700 on the directory and 0600 on files.
	StrictPerms bool
}

const fileExt = ".json"

func (s *FileStorage) ensureDir() error {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if s.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(s.Dir, perm); err != nil {
		return err
	}
	if s.StrictPerms {
		if info, err := os.Stat(s.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(s.Dir, 0o700)
		}
	}
	return nil
}

func (s *FileStorage) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(s.Dir, key+fileExt), nil
}

func (s *FileStorage) lock() (*flock.Flock, error) {
	fl := flock.New(filepath.Join(s.Dir, ".lock"))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("lock cache dir: %w", err)
	}
	return fl, nil
}

func (s *FileStorage) Keys(_ context.Context, prefix string) ([]string, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".") {
			continue
		}
		if key := strings.TrimSuffix(name, fileExt); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	if err := s.ensureDir(); err != nil {
		return "", false, err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (s *FileStorage) SetItem(_ context.Context, key, value string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	fl, err := s.lock()
	if err != nil {
		return err
	}
	defer fl.Unlock()

	mode := os.FileMode(0o644)
	if s.StrictPerms {
		mode = 0o600
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), mode); err != nil {
		return fmt.Errorf("write item: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit item: %w", err)
	}
	return nil
}

func (s *FileStorage) RemoveItem(_ context.Context, key string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	fl, err := s.lock()
	if err != nil {
		return err
	}
	defer fl.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
