// Package fs implements the blob store on a local directory tree, one
// subdirectory per kind.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stereohaus/beatstore/blob"
)

var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".zip":  "application/zip",
	".rar":  "application/vnd.rar",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// ContentType maps a filename to its MIME type, defaulting to octet-stream.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// path joins root/kind/name, rejecting names that escape the kind
// directory.
func (s *Store) path(kind blob.Kind, name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("fs: invalid asset name %q", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(string(kind)), name), nil
}

func (s *Store) Open(_ context.Context, kind blob.Kind, name string) (*blob.Ref, error) {
	p, err := s.path(kind, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &blob.Ref{
		Reader:      f,
		Name:        name,
		Size:        info.Size(),
		ContentType: ContentType(name),
	}, nil
}

func (s *Store) Put(_ context.Context, kind blob.Kind, name string, r io.Reader) error {
	p, err := s.path(kind, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return err
	}
	return f.Close()
}

func (s *Store) Delete(_ context.Context, kind blob.Kind, name string) error {
	p, err := s.path(kind, name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (s *Store) List(_ context.Context, kind blob.Kind) ([]string, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(string(kind)))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
