package storage

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrOutsideRoot is returned for paths that would resolve outside the storage root.
var ErrOutsideRoot = errors.New("storage: path escapes root")

// Local stores uploaded files on the local filesystem under a single root directory.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Local{root: abs}, nil
}

func (l *Local) Root() string {
	return l.root
}

// Save writes r to dir under a generated name that keeps the extension of name.
// It returns the slash-separated path relative to the root and the bytes written.
func (l *Local) Save(dir, name string, r io.Reader) (string, int64, error) {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	rel := path.Join(filepath.ToSlash(dir), id.String()+ext)

	full, err := l.resolve(rel)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", 0, err
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", 0, err
	}
	return rel, n, nil
}

// Remove deletes a previously saved file. Missing files are not an error.
func (l *Local) Remove(rel string) error {
	full, err := l.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) resolve(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", ErrOutsideRoot
	}
	full := filepath.Join(l.root, filepath.FromSlash(rel))
	inside, err := filepath.Rel(l.root, full)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) || inside == "." {
		return "", ErrOutsideRoot
	}
	return full, nil
}
