package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ije/gox/utils"
)

// temp files of unfinished puts
const tempPrefix = ".put-"

// NewFSStorage creates a storage that keeps the records as files under dir.
func NewFSStorage(dir string) (Storage, error) {
	if dir == "" {
		return nil, errors.New("dir is required")
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &fsStorage{root: root}, nil
}

type fsStorage struct {
	root string
}

// filename maps the key to a file under the root, keys escaping the root are
// rejected.
func (s *fsStorage) filename(key string) (string, error) {
	name := strings.Trim(utils.NormalizePathname(key), "/")
	if name == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", errors.New("invalid key: " + key)
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

func (s *fsStorage) Stat(key string) (Stat, error) {
	filename, err := s.filename(key)
	if err != nil {
		return nil, ErrNotFound
	}
	fi, err := os.Lstat(filename)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if fi.IsDir() {
		return nil, ErrNotFound
	}
	return fi, nil
}

func (s *fsStorage) Get(key string) (io.ReadCloser, Stat, error) {
	fi, err := s.Stat(key)
	if err != nil {
		return nil, nil, err
	}
	filename, _ := s.filename(key)
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, mapNotFound(err)
	}
	return file, fi, nil
}

func (s *fsStorage) List(prefix string) ([]string, error) {
	dir := s.root
	if p := strings.Trim(utils.NormalizePathname(prefix), "/"); p != "" {
		var err error
		if dir, err = s.filename(p); err != nil {
			return nil, err
		}
	}
	keys := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *fsStorage) Put(key string, content io.Reader) error {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	// readers never see a partial file
	file, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return err
	}
	_, err = io.Copy(file, content)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(file.Name(), filename)
	}
	if err != nil {
		os.Remove(file.Name())
	}
	return err
}

func (s *fsStorage) DeleteAll(prefix string) ([]string, error) {
	p := strings.Trim(utils.NormalizePathname(prefix), "/")
	if p == "" {
		return nil, errors.New("prefix is required")
	}
	dir, err := s.filename(p)
	if err != nil {
		return nil, err
	}
	if _, err := os.Lstat(dir); err != nil {
		return nil, mapNotFound(err)
	}
	keys, err := s.List(p)
	if err != nil {
		return nil, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return nil, err
	}
	return keys, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return ErrNotFound
	}
	return err
}
