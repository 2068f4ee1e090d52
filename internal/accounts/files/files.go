// Package files keeps uploaded and generated files under the application
// data directory.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Directories under the data root.
const (
	DirUserpics = "userpics"
	DirMFA      = "mfa"
)

var ErrInvalidName = errors.New("files: invalid file name")

// Store writes files below Root. Names never contain path separators.
type Store struct {
	Root string
}

// Entry describes a stored file.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Dir returns the absolute directory for dir, creating it when missing.
func (s *Store) Dir(dir string) (string, error) {
	path := filepath.Join(s.Root, dir)
	if err := os.MkdirAll(path, 0750); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return path, nil
}

// Path joins dir and name below Root.
func (s *Store) Path(dir, name string) string {
	return filepath.Join(s.Root, dir, name)
}

// Save writes data to dir under a fresh uuid name with ext (".jpg") and
// returns the name.
func (s *Store) Save(dir, ext string, data []byte) (string, error) {
	path, err := s.Dir(dir)
	if err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(path, name), data, 0640); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return name, nil
}

// Delete removes dir/name. A missing file is not an error.
func (s *Store) Delete(dir, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(s.Path(dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether dir/name is a regular file.
func (s *Store) Exists(dir, name string) bool {
	if checkName(name) != nil {
		return false
	}
	info, err := os.Stat(s.Path(dir, name))
	return err == nil && info.Mode().IsRegular()
}

// List returns regular files in dir sorted by name, skipping dot files. A
// missing directory lists as empty.
func (s *Store) List(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(filepath.Join(s.Root, dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
